// Package misc keeps program identity set at build time.
package misc

// Set by linker: -ldflags "-X brandcss/misc.version=... -X brandcss/misc.gitHash=..."
var (
	version = "dev"
	gitHash = "unknown"
)

const appName = "brandcss"

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
