package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	// HMAC secret for the local bearer tokens.
	AuthSecret string

	// Static credential presented by the autograder when it submits tests or
	// run results on behalf of a student. Carries instructor capability.
	GraderToken string

	// Author value recorded on instructor-seeded (default) test cases.
	DefaultAuthor string

	// When true, GET routes tolerate a missing credential and treat the
	// requester as anonymous instead of rejecting with 403.
	AllowAnonymous bool

	CORSOrigins []string

	// Distribution defaults; instructor-credentialed requests may override
	// them per request, everyone else gets them as-is.
	NumPublicTestsForAccess int
	MaxTestsPerStudent      int
	MaxNumReturnedTests     int
	WeightReturnedTests     bool
}

func FromEnv() Config {
	return Config{
		HTTPAddr:       envOr("HTTP_ADDR", ":3000"),
		DBDriver:       envOr("DB_DRIVER", "sqlite"),
		DBDSN:          envOr("DB_DSN", ""),
		AuthSecret:     envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		GraderToken:    os.Getenv("GRADER_TOKEN"),
		DefaultAuthor:  envOr("DEFAULT_AUTHOR", "instructor"),
		AllowAnonymous: envBool("ALLOW_ANONYMOUS", false),
		CORSOrigins:    csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),

		NumPublicTestsForAccess: envInt("NUM_PUBLIC_TESTS_FOR_ACCESS", 1),
		MaxTestsPerStudent:      envInt("MAX_TESTS_PER_STUDENT", 10),
		MaxNumReturnedTests:     envInt("MAX_NUM_RETURNED_TESTS", 100),
		WeightReturnedTests:     envBool("WEIGHT_RETURNED_TESTS", false),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
