package config

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/akam1o/tna-routegen/pkg/errors"
)

// EnvEtcdPassword supplies the etcd password. EnvEtcdPassword+"_FILE" names
// a file holding it instead.
const EnvEtcdPassword = "TNA_ROUTEGEN_ETCD_PASSWORD"

// insecureSecretPerms are the permission bits a secret file must not carry
const insecureSecretPerms os.FileMode = 0077

// SecretPermissionError reports a secret file readable or writable beyond its owner
type SecretPermissionError struct {
	Path         string
	CurrentPerms os.FileMode
	Owner        uint32
}

func (e *SecretPermissionError) Error() string {
	return fmt.Sprintf("insecure permissions on secret file %s: mode=%04o owner=%d (expected 0600 or stricter)",
		e.Path, e.CurrentPerms, e.Owner)
}

// checkSecretFile fails unless only the owner can access path
func checkSecretFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat secret file %s: %w", path, err)
	}

	perms := info.Mode().Perm()
	if perms&insecureSecretPerms == 0 {
		return nil
	}

	var owner uint32
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		owner = stat.Uid
	}
	return &SecretPermissionError{Path: path, CurrentPerms: perms, Owner: owner}
}

func readSecretFile(path string) (string, error) {
	if err := checkSecretFile(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	// Trim the trailing newline editors and secret mounts leave behind
	return strings.TrimRight(string(data), "\r\n"), nil
}

// secretFromEnv reads envVar, falling back to the file named by envVar_FILE.
// ok is false when neither is set.
func secretFromEnv(envVar string) (secret string, ok bool, err error) {
	if val := os.Getenv(envVar); val != "" {
		return val, true, nil
	}
	if path := os.Getenv(envVar + "_FILE"); path != "" {
		s, err := readSecretFile(path)
		return s, true, err
	}
	return "", false, nil
}

// ResolveSecrets fills the etcd password from store.etcd.passwordFile or the
// environment. A password written in the configuration file wins. Nothing is
// read unless the etcd backend is selected.
func (c *Config) ResolveSecrets() error {
	if c.Store.Backend != "etcd" || c.Store.Etcd == nil || c.Store.Etcd.Password != "" {
		return nil
	}
	e := c.Store.Etcd

	if e.PasswordFile != "" {
		password, err := readSecretFile(e.PasswordFile)
		if err != nil {
			return secretError(err, "store.etcd.passwordFile")
		}
		e.Password = password
		return nil
	}

	password, ok, err := secretFromEnv(EnvEtcdPassword)
	if err != nil {
		return secretError(err, EnvEtcdPassword+"_FILE")
	}
	if ok {
		e.Password = password
	}
	return nil
}

func secretError(err error, source string) error {
	return errors.Wrap(
		err,
		errors.ErrCodeConfigPermission,
		fmt.Sprintf("Failed to read the etcd password from %s", source),
		err.Error(),
		"Make the file readable by its owner only, e.g. chmod 0600",
	)
}
