package session

import (
	"strings"

	"github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, quiet bool, version, commit, date string) {
	if quiet {
		return
	}

	logger.Info("retrochip8",
		log.String("version", buildinfo.Version(version, commit, "")),
		log.Stringer("system", arch.CHIP8System))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}

// VersionString returns the version description for the version command.
func VersionString(version, commit, date string) string {
	return buildinfo.Version(version, commit, date)
}
