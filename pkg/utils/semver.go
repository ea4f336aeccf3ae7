package utils

import (
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog/log"
)

type parsedVersion struct {
	raw    string
	semver *semver.Version
}

func parseVersions(versions []string) (valid []parsedVersion, invalid []string) {
	for _, v := range versions {
		sv, err := semver.NewVersion(v)
		if err != nil {
			log.Debug().Str("version", v).Err(err).Msg("version is not semver, ordering lexically")
			invalid = append(invalid, v)
			continue
		}
		valid = append(valid, parsedVersion{raw: v, semver: sv})
	}
	return valid, invalid
}

// SortVersions returns the versions highest first. Versions are returned as
// given, not normalized. Versions that do not parse as semver follow the
// parsed ones in lexical order.
func SortVersions(versions []string) []string {
	valid, invalid := parseVersions(versions)

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].semver.GreaterThan(valid[j].semver)
	})
	sort.Strings(invalid)

	result := make([]string, 0, len(versions))
	for _, v := range valid {
		result = append(result, v.raw)
	}
	return append(result, invalid...)
}

// SortVersionsAscending returns the versions oldest first, with non-semver
// versions in lexical order after the parsed ones
func SortVersionsAscending(versions []string) []string {
	valid, invalid := parseVersions(versions)

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].semver.LessThan(valid[j].semver)
	})
	sort.Strings(invalid)

	result := make([]string, 0, len(versions))
	for _, v := range valid {
		result = append(result, v.raw)
	}
	return append(result, invalid...)
}

// GetLatestVersion returns the highest version, or "" for an empty list
func GetLatestVersion(versions []string) string {
	sorted := SortVersions(versions)
	if len(sorted) == 0 {
		return ""
	}
	return sorted[0]
}

// IsPrerelease checks if a version carries a prerelease part (beta, rc,
// SNAPSHOT)
func IsPrerelease(version string) bool {
	sv, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return sv.Prerelease() != ""
}

// CompareVersions compares two version strings according to semver rules
// Returns:
//
//	-1 if v1 < v2
//	 0 if v1 == v2
//	 1 if v1 > v2
//	 2 if either version is invalid
func CompareVersions(v1, v2 string) int {
	sv1, err := semver.NewVersion(v1)
	if err != nil {
		return 2
	}
	sv2, err := semver.NewVersion(v2)
	if err != nil {
		return 2
	}
	return sv1.Compare(sv2)
}
