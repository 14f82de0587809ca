// ABOUTME: Test helpers for config tests
// ABOUTME: Provides utilities for environment variable management

package config

import (
	"os"
	"testing"
)

// withCleanHivedEnv clears the environment, sets the required scheduler and
// catalog variables to test values, and returns a cleanup function that
// restores the original env. Use with t.Cleanup().
//
// Tests run in a temp dir so a developer's .env is never picked up.
func withCleanHivedEnv(t *testing.T) func() {
	t.Helper()
	return withCleanHivedEnvAndExtra(t, nil)
}

// withCleanHivedEnvAndExtra is withCleanHivedEnv plus additional vars.
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    t.Cleanup(withCleanHivedEnvAndExtra(t, map[string]string{
//	        "BATCH_CONCURRENCY": "8",
//	    }))
//	}
func withCleanHivedEnvAndExtra(t *testing.T, extra map[string]string) func() {
	t.Helper()

	originalEnv := os.Environ()
	t.Chdir(t.TempDir())

	os.Clearenv()
	os.Setenv("HIVED_SCHEDULER_URL", "http://hived.test:30096")
	os.Setenv("RESOURCE_UNITS", `{"K80": {"gpu": 1, "cpu": 5, "memory": "56Gi"}}`)

	for key, value := range extra {
		os.Setenv(key, value)
	}

	return func() {
		os.Clearenv()
		for _, env := range originalEnv {
			for i := 0; i < len(env); i++ {
				if env[i] == '=' {
					os.Setenv(env[:i], env[i+1:])
					break
				}
			}
		}
	}
}
