package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                              "/",
		"/metrics":                      "/metrics",
		"/healthz":                      "/healthz",
		"/v1/users/login":               "/v1/users/login",
		"/v1/users/register":            "/v1/users/register",
		"/v1/users/me":                  "/v1/users/me",
		"/v1/users/0190c2a4":            "/v1/users/:uuid",
		"/v1/users/0190c2a4/roles":      "/v1/users/:uuid/roles",
		"/v1/workouts/0190c2a4":         "/v1/workouts/:uuid",
		"/v1/exercises/0190c2a4":        "/v1/exercises/:uuid",
		"/v1/workouts":                  "/v1/workouts",
		"/v1/exercises?page=2":          "/v1/exercises",
		"/v1/users/0190c2a4?expand=yes": "/v1/users/:uuid",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
