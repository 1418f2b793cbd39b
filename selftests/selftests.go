// Package selftests declares the suites that the bdd-harness command runs by default. They
// exercise every feature of the engine and are expected to pass.
package selftests

import "github.com/launchdarkly/bdd-harness/framework/bdd"

const (
	PlaylistSuite = "playlist"
	EngineSuite   = "engine"
)

// Register declares all self-test suites in reg.
func Register(reg *bdd.Registry) error {
	for _, register := range []func(*bdd.Registry) error{
		registerPlaylist,
		registerAssertions,
		registerSetupAndTeardown,
		registerMocks,
		registerAsync,
	} {
		if err := register(reg); err != nil {
			return err
		}
	}
	return nil
}
