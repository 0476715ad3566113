package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/text/encoding/ianaindex"
)

// ensureEnvFile merges the schema's dotenv file into the process environment
// exactly once per resolved path. Variables already present in the real
// environment always win over file contents. A missing file is skipped
// without being marked loaded, so a file created later is picked up by a
// subsequent load rather than ignored forever.
func (r *Registry) ensureEnvFile(cfg Config) error {
	if cfg.EnvFile == "" {
		return nil
	}

	r.envMu.Lock()
	defer r.envMu.Unlock()

	abs := r.absPathLocked(cfg.EnvFile)
	if _, done := r.loaded[abs]; done {
		return nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Join(ErrEnvFile, err)
	}

	if data, err = decodeCharset(data, cfg.EnvFileEncoding); err != nil {
		return errors.Join(ErrEnvFile, fmt.Errorf("transcoding %s: %v", cfg.EnvFile, err))
	}

	vals, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return errors.Join(ErrEnvFile, fmt.Errorf("parsing %s: %v", cfg.EnvFile, err))
	}

	for k, v := range vals {
		if _, exists := os.LookupEnv(k); exists {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return errors.Join(ErrEnvFile, err)
		}
	}

	r.loaded[abs] = struct{}{}
	return nil
}

// absPathLocked resolves a configured path to its absolute form, cached per
// literal string. Distinct spellings of the same file stay distinct cache
// entries; the loaded set keyed by the resolved path is what deduplicates
// the actual merge. Callers must hold envMu.
func (r *Registry) absPathLocked(path string) string {
	if abs, ok := r.absPaths[path]; ok {
		return abs
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path // working directory unavailable, keep the literal
	}
	r.absPaths[path] = abs
	return abs
}

// decodeCharset transcodes env file contents to UTF-8 according to the
// configured IANA charset name. UTF-8 input passes through untouched.
func decodeCharset(data []byte, encoding string) ([]byte, error) {
	if isUTF8Name(encoding) {
		return data, nil
	}
	enc, err := ianaindex.IANA.Encoding(encoding)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", encoding)
	}
	return enc.NewDecoder().Bytes(data)
}

// checkEncoding rejects unknown charset names at Define time, before any
// load has a chance to fail on them.
func checkEncoding(encoding string) error {
	if isUTF8Name(encoding) {
		return nil
	}
	if enc, err := ianaindex.IANA.Encoding(encoding); err != nil || enc == nil {
		return errors.Join(ErrSchema, fmt.Errorf("unsupported env file encoding %q", encoding))
	}
	return nil
}

func isUTF8Name(encoding string) bool {
	return encoding == "" || strings.EqualFold(encoding, "utf-8") || strings.EqualFold(encoding, "utf8")
}
