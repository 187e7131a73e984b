package luau

import (
	"errors"
	"testing"
)

func TestSettingsValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Settings)
		ok     bool
	}{
		{"defaults", func(s *Settings) {}, true},
		{"four-wide vectors", func(s *Settings) { s.VectorSize = 4 }, true},
		{"bad vector size", func(s *Settings) { s.VectorSize = 5 }, false},
		{"imports without environment", func(s *Settings) { s.UseImportConstants = true }, false},
		{"environment without imports", func(s *Settings) { s.StaticEnvironment = NewTable(0) }, false},
		{"imports with environment", func(s *Settings) {
			s.UseImportConstants = true
			s.StaticEnvironment = NewTable(0)
		}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := DefaultSettings()
			tc.mutate(s)
			err := s.Validate()
			if tc.ok && err != nil {
				t.Errorf("Validate: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("got %v, want ErrInvalidSettings", err)
			}
		})
	}
}
