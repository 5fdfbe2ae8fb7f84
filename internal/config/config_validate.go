// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"

	"github.com/osusync/bridge/internal/validation"
)

// Validate checks the struct tags (oneof enums) and one business rule on
// top: a configured path must actually look like the
// installation it claims to be. An unset path is not an error — the
// bridge simply has nothing to scan on that side until the user sets one.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return fmt.Errorf("SYNCTOOL_CONFIG is invalid: %w", verr)
	}

	if c.StablePath != "" && !validateStablePath(c.StablePath) {
		return fmt.Errorf("stable_path %q does not look like an osu!stable installation (no Songs/ folder)", c.StablePath)
	}
	if c.LazerPath != "" && !validateLazerPath(c.LazerPath) {
		return fmt.Errorf("lazer_path %q does not look like an osu!lazer data directory (missing client.realm or files/)", c.LazerPath)
	}

	return nil
}
