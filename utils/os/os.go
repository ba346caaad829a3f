package os

import (
	"bufio"
	"os"
	"strings"
)

// LoadEnvFile loads a KEY=VALUE file into the process environment. Missing
// files are not an error; existing environment variables are not overwritten.
func LoadEnvFile(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.Trim(strings.TrimSpace(v), `"`)
		if _, exist := os.LookupEnv(k); !exist {
			_ = os.Setenv(k, v)
		}
	}
	return scanner.Err()
}
