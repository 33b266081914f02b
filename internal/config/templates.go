package config

import (
	"fmt"
	"os"
)

// Template returns a commented config file holding the defaults.
func Template() string {
	return fileTemplate
}

// WriteTemplate writes Template to path, refusing to replace an existing
// file unless overwrite is set.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(fileTemplate), 0o600)
}

const fileTemplate = `# Plain-text fallback for a profile with no contact field.
placeholder_text = "NFC Profile"

# Declared media type of the structured profile record.
mime_type = "application/json"

# 0s waits until the caller gives up.
write_timeout = "0s"
scan_timeout = "0s"

[log]
# trace | debug | info | warn | error | disabled
level = "info"
timestamp = true
# no_color = true

[metrics]
enabled = false
`
