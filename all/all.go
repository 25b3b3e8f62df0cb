// Package all registers every supported manifest format.
//
// Import for side effects:
//
//	import _ "github.com/git-pkgs/manifests/all"
package all

import (
	_ "github.com/git-pkgs/manifests/internal/cargo"
)
