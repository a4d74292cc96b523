package version

import "fmt"

var (
	Version = "0.1.0"
	// Git SHA Value will be set during build
	GitTagSha = "Git tag sha: Not provided, use Makefile to build"
)

func GetVersion() string {
	return fmt.Sprintf("notifier %s, %s", Version, GitTagSha)
}
