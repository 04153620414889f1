package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// envFiles are loaded in order; variables already present in the environment win.
var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads every existing env file. It returns an error only when none was found.
func loadEnvFile() error {
	loaded := 0
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		loaded++
	}
	if loaded == 0 {
		return fmt.Errorf("no .env file found")
	}
	return nil
}

// ReadEnvFile returns the key/value pairs of an env file, or an empty map when it does not exist.
func ReadEnvFile(path string) (map[string]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	return godotenv.Read(path)
}

// WriteEnvFile merges values into the env file at path, keeping unrelated keys.
func WriteEnvFile(path string, values map[string]string) error {
	current, err := ReadEnvFile(path)
	if err != nil {
		return err
	}
	for k, v := range values {
		current[k] = v
	}
	return godotenv.Write(current, path)
}
