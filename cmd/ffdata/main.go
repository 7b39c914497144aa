package main

import (
	"yst-fantasy/cmd/ffdata/commands"
	"yst-fantasy/internal/components/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
