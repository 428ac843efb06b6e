package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SecretsDir - стандартный путь Docker Secrets.
var SecretsDir = "/run/secrets"

// ReadSecret читает секрет из файла в стандартном пути Docker Secrets.
func ReadSecret(secretName string) (string, error) {
	return ReadSecretFrom(SecretsDir, secretName)
}

// ReadSecretFrom читает секрет из файла dir/secretName.
func ReadSecretFrom(dir, secretName string) (string, error) {
	filePath := filepath.Join(dir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// EnvOrSecret возвращает value, если оно не пустое, иначе содержимое секрета.
// Отсутствующий файл секрета не является ошибкой: возвращается пустая строка.
func EnvOrSecret(value, secretName string) string {
	if value != "" {
		return value
	}
	secret, err := ReadSecret(secretName)
	if err != nil {
		return ""
	}
	return secret
}
