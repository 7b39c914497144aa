package oauth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter is how a handshake reaches the user: it shows them a url and reads back
// the code they were given.
type Prompter interface {
	PresentUrl(url string) error
	ReadCode(ctx context.Context) (string, error)
}

// ConsolePrompter prompts on a terminal.
type ConsolePrompter struct {
	Out io.Writer
	In  *bufio.Reader
}

func NewConsolePrompter(out io.Writer, in io.Reader) ConsolePrompter {
	return ConsolePrompter{Out: out, In: bufio.NewReader(in)}
}

func (p ConsolePrompter) PresentUrl(url string) error {
	_, err := fmt.Fprintf(p.Out, "open the following url in a browser and authorize the app:\n\n%s\n\n", url)
	return err
}

func (p ConsolePrompter) ReadCode(ctx context.Context) (string, error) {
	_, err := fmt.Fprint(p.Out, "code: ")
	if err != nil {
		return "", err
	}

	type result struct {
		line string
		err  error
	}
	// a bufio.Reader cannot be interrupted, when ctx ends first the read is left
	// blocked until the input yields a line or closes. done is buffered so the
	// goroutine can always exit then. The prompter must not be read from again.
	done := make(chan result, 1)
	go func() {
		line, err := p.In.ReadString('\n')
		done <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil && !(errors.Is(r.err, io.EOF) && r.line != "") {
			return "", r.err
		}
		code := strings.TrimSpace(r.line)
		if code == "" {
			return "", fmt.Errorf("no code was entered")
		}
		return code, nil
	}
}

// Authorize runs the oauth2 authorization code flow end to end.
func Authorize(ctx context.Context, client *Client, prompter Prompter) (Token, error) {
	loginUrl, err := GetLoginUrl(ctx, AuthCodeRequest{
		ClientId:    client.opts.ClientId,
		RedirectUri: client.opts.RedirectUri,
	}, YahooLoginUrl)
	if err != nil {
		return Token{}, err
	}
	err = prompter.PresentUrl(loginUrl)
	if err != nil {
		return Token{}, err
	}
	code, err := prompter.ReadCode(ctx)
	if err != nil {
		return Token{}, err
	}
	return client.ExchangeCode(ctx, code)
}

// AuthorizeLegacy runs the three legged oauth1 flow end to end with an out of band
// callback.
func AuthorizeLegacy(ctx context.Context, client *LegacyClient, prompter Prompter) (Credentials, error) {
	requestToken, err := client.RequestToken(ctx, OutOfBand)
	if err != nil {
		return Credentials{}, err
	}
	authorizeUrl, err := client.AuthorizeUrl(requestToken)
	if err != nil {
		return Credentials{}, err
	}
	err = prompter.PresentUrl(authorizeUrl)
	if err != nil {
		return Credentials{}, err
	}
	verifier, err := prompter.ReadCode(ctx)
	if err != nil {
		return Credentials{}, err
	}
	return client.AccessToken(ctx, requestToken, verifier)
}
