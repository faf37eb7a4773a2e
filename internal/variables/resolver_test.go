package variables

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "simple",
			text: "Hello [[NAME]], welcome to [[PROJECT]].",
			want: []string{"NAME", "PROJECT"},
		},
		{
			name: "case insensitive dedup",
			text: "[[apiUrl]] and [[API_URL]] and [[APIURL]]",
			want: []string{"APIURL", "API_URL"},
		},
		{
			name: "with default",
			text: "Deploy to [[ENV|staging]].",
			want: []string{"ENV"},
		},
		{
			name: "first seen order",
			text: "[[B]] then [[A]] then [[B]]",
			want: []string{"B", "A"},
		},
		{
			name: "escape sequence hides placeholder",
			text: "literal [[[[NOT_A_VAR]] here",
			want: nil,
		},
		{
			name: "none",
			text: "plain text with [single] brackets",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	saved := map[string]string{"NAME": "lynx", "env": "production"}
	authorDefaults := map[string]string{"REGION": "eu-west-1"}

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "saved value wins",
			text: "project [[NAME]]",
			want: "project lynx",
		},
		{
			name: "saved beats author default",
			text: "[[ENV]]",
			want: "production",
		},
		{
			name: "saved beats literal default",
			text: "[[NAME|fallback]]",
			want: "lynx",
		},
		{
			name: "author default",
			text: "region [[REGION]]",
			want: "region eu-west-1",
		},
		{
			name: "literal default",
			text: "port [[PORT|8080]]",
			want: "port 8080",
		},
		{
			name: "empty literal default",
			text: "x[[GONE|]]y",
			want: "xy",
		},
		{
			name: "unresolved stays visible",
			text: "owner [[OWNER]]",
			want: "owner [[OWNER]]",
		},
		{
			name: "unresolved canonicalizes",
			text: "owner [[owner]]",
			want: "owner [[OWNER]]",
		},
		{
			name: "case insensitive reference",
			text: "[[name]] [[Name]] [[NAME]]",
			want: "lynx lynx lynx",
		},
		{
			name: "escape renders literal brackets",
			text: "[[[[NAME]] is not substituted",
			want: "[[NAME]] is not substituted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.text, saved, authorDefaults)
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestResolveNilMaps(t *testing.T) {
	got := Resolve("[[A|x]] [[B]]", nil, nil)
	if got != "x [[B]]" {
		t.Errorf("Resolve with nil maps = %q, want %q", got, "x [[B]]")
	}
}

func TestValidKey(t *testing.T) {
	valid := []string{"NAME", "API_URL", "A1", "X_2_Y"}
	invalid := []string{"", "name", "With Space", "DASH-ED", "[[X]]"}

	for _, k := range valid {
		if !ValidKey(k) {
			t.Errorf("ValidKey(%q) = false, want true", k)
		}
	}
	for _, k := range invalid {
		if ValidKey(k) {
			t.Errorf("ValidKey(%q) = true, want false", k)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	// Extracted names keyed with values must resolve every placeholder.
	text := "Hi [[USER]], deploy [[project]] to [[ENV|dev]]."
	values := make(map[string]string)
	for _, name := range Extract(text) {
		values[name] = "v-" + name
	}
	got := Resolve(text, values, nil)
	want := "Hi v-USER, deploy v-PROJECT to v-ENV."
	if got != want {
		t.Errorf("round trip = %q, want %q", got, want)
	}
}
