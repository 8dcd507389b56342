package artifact

import (
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	logx "github.com/GreatAuk/webupdate/pkg/logx"
)

// VersionMode selects how the build-time version string is produced.
type VersionMode string

const (
	// VersionGit stamps the short revision hash of HEAD.
	VersionGit VersionMode = "git"
	// VersionPkg stamps the host package's version taken from the build
	// environment (npm_package_version, or WEB_UPDATE_VERSION as an
	// ecosystem-neutral override).
	VersionPkg VersionMode = "pkg"
	// VersionTime stamps the current unix-milli timestamp.
	VersionTime VersionMode = "time"
)

// ResolveVersion produces the version string for the selected mode.
//
// It never fails: when the selected source is unavailable it logs a warning
// and falls back to a timestamp, which is always derivable.
func ResolveVersion(mode VersionMode, log logx.Logger) string {
	switch mode {
	case VersionGit:
		v, err := gitShortHash()
		if err != nil {
			log.Warn("git revision unavailable, falling back to timestamp", logx.Err(err))
			return timestampVersion()
		}
		return v
	case VersionPkg:
		if v := pkgVersion(); v != "" {
			return v
		}
		log.Warn("package version not found in environment, falling back to timestamp")
		return timestampVersion()
	case VersionTime, "":
		return timestampVersion()
	default:
		log.Warn("unknown version mode, falling back to timestamp", logx.String("mode", string(mode)))
		return timestampVersion()
	}
}

func gitShortHash() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "", err
	}
	v := strings.TrimSpace(string(out))
	if v == "" {
		return "", exec.ErrNotFound
	}
	return v, nil
}

func pkgVersion() string {
	for _, key := range []string{"npm_package_version", "WEB_UPDATE_VERSION"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func timestampVersion() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}
