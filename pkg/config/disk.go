package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ghodss/yaml"
)

var FileMutex sync.RWMutex

type DumperFunc func(io.Writer) error
type LoaderFunc func(io.Reader) error

func (c *Config) LoadYAML(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

func (c *Config) SaveYAML(w io.Writer) error {
	out, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	_, err = io.Copy(w, bytes.NewBuffer(out))
	return err
}

// SecretPerm is the mode of any file holding an auth key.
const SecretPerm os.FileMode = 0600

// ToDisk writes filename with mode perm. The mode is applied even when the file
// already exists.
func ToDisk(filename string, perm os.FileMode, dumperFunc DumperFunc) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return errors.Join(ErrDump, err)
	}
	defer f.Close()

	if err := f.Chmod(perm); err != nil {
		return errors.Join(ErrDump, err)
	}

	if err := dumperFunc(f); err != nil {
		return errors.Join(ErrDump, err)
	}

	return nil
}

func FromDisk(filename string, loaderFunc LoaderFunc) error {
	f, err := os.Open(filename)
	if err != nil {
		return errors.Join(ErrLoad, err)
	}
	defer f.Close()

	if err := loaderFunc(f); err != nil {
		return errors.Join(ErrLoad, err)
	}

	return nil
}

// Load reads a YAML configuration over the defaults and validates it.
func Load(filename string) (*Config, error) {
	c := Default()

	FileMutex.RLock()
	defer FileMutex.RUnlock()

	if err := FromDisk(filename, c.LoadYAML); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, errors.Join(ErrLoad, err)
	}

	return c, nil
}

// Save writes the configuration next to filename and moves it into place. The
// file is only readable by its owner when it carries an auth key.
func (c *Config) Save(filename string) error {
	if filename == "" {
		return errors.New("invalid filename")
	}

	FileMutex.Lock()
	defer FileMutex.Unlock()

	perm := os.FileMode(0644)
	if c.AuthKey != nil {
		perm = SecretPerm
	}

	if err := ToDisk(filename+".tmp", perm, c.SaveYAML); err != nil {
		return err
	}

	if err := os.Rename(filename+".tmp", filename); err != nil {
		return fmt.Errorf("Could not move configuration file into place: %w", err)
	}

	return nil
}
