package db

import (
	"strings"
	"testing"
)

func TestInitPostgres_ErrorPaths(t *testing.T) {
	cases := []struct {
		name       string
		dsn        string
		wantSubstr string
	}{
		{"invalid DSN", "host=127.0.0.1 port=1 connect_timeout=1 sslmode=disable", "ping postgres"},
		{"unreachable URL", "postgres://u:p@127.0.0.1:1/db?sslmode=disable&connect_timeout=1", "ping postgres"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := InitPostgres(tc.dsn)
			if err == nil {
				t.Fatalf("InitPostgres(%q) did not return error", tc.dsn)
			}
			if !strings.Contains(err.Error(), tc.wantSubstr) {
				t.Errorf("InitPostgres(%q) error = %q; want substring %q", tc.dsn, err.Error(), tc.wantSubstr)
			}
		})
	}
}

func TestSchemaNotifiesApplicationsChannel(t *testing.T) {
	if !strings.Contains(schema, "pg_notify('"+ApplicationsChannel+"'") {
		t.Fatalf("schema does not notify %s", ApplicationsChannel)
	}
	for _, table := range []string{"countries", "user_favorites", "creator_applications", "video_requests", "sessions"} {
		if !strings.Contains(schema, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("schema missing table %s", table)
		}
	}
}
