// Package pcombver tracks the engine's own semantic version and checks
// a grammar's declared version constraint against it, so a grammar
// built for one engine revision fails fast and legibly against an
// incompatible one instead of misbehaving at parse time.
//
// Grounded on SeleniaProject-Orizon's package manager, which resolves
// a dependency's version constraint against a candidate release the
// same way (internal/packagemanager/httpserver.go's
// semver.NewConstraint/Constraints.Check use).
package pcombver

import (
	"fmt"

	semver "github.com/Masterminds/semver/v3"
)

// EngineVersion is pcomb's own release version. Keep in sync with
// internal/cli.Version.
const EngineVersion = "0.3.0"

// Engine is the parsed form of EngineVersion, computed once at
// package init so a malformed EngineVersion fails at program start
// rather than on the first Check call.
var Engine = semver.MustParse(EngineVersion)

// Check reports whether the engine's version satisfies constraint (a
// semver constraint expression such as ">= 0.2, < 1.0"), returning a
// descriptive error when it does not or when constraint fails to
// parse.
func Check(constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("pcombver: invalid version constraint %q: %w", constraint, err)
	}
	if !c.Check(Engine) {
		return fmt.Errorf("pcombver: engine version %s does not satisfy constraint %q", EngineVersion, constraint)
	}
	return nil
}

// MustCheck is Check but panics on failure, for grammar packages that
// want an unconditional fast failure at init time.
func MustCheck(constraint string) {
	if err := Check(constraint); err != nil {
		panic(err)
	}
}
