package oauth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// StoredTokens is what is persisted between runs, either may be nil.
type StoredTokens struct {
	OAuth2 *Token       `json:"oauth2,omitempty"`
	OAuth1 *Credentials `json:"oauth1,omitempty"`
}

// TokenFile is a json file holding StoredTokens, it is only readable by the owner.
type TokenFile struct {
	Path string
}

// Load returns os.ErrNotExist (wrapped) if nothing has been saved yet.
func (f TokenFile) Load() (StoredTokens, error) {
	contents, err := os.ReadFile(f.Path)
	if err != nil {
		return StoredTokens{}, err
	}
	var out StoredTokens
	err = json.Unmarshal(contents, &out)
	if err != nil {
		return StoredTokens{}, fmt.Errorf("json unmarshal %s: %w", f.Path, err)
	}
	return out, nil
}

func (f TokenFile) Save(tokens StoredTokens) error {
	err := os.MkdirAll(filepath.Dir(f.Path), 0700)
	if err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return err
	}
	err = os.WriteFile(f.Path, encoded, 0600)
	if err != nil {
		return err
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(f.Path, 0600)
}
