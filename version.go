// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package qconv

import (
	"runtime/debug"
	"strings"
)

// Build describes how the running
// binary was built, as recorded by
// the Go toolchain.
type Build struct {
	// Module is the main module version;
	// "(devel)" for builds from a checkout.
	Module    string `json:"module,omitempty"`
	GoVersion string `json:"go,omitempty"`
	Revision  string `json:"revision,omitempty"`
	Time      string `json:"date,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
}

// ReadBuild returns the Build of the running binary.
func ReadBuild() (Build, bool) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return Build{}, false
	}
	return buildFrom(bi), true
}

func buildFrom(bi *debug.BuildInfo) Build {
	b := Build{
		Module:    bi.Main.Version,
		GoVersion: bi.GoVersion,
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			b.Revision = s.Value
		case "vcs.time":
			b.Time = s.Value
		case "vcs.modified":
			b.Modified = s.Value == "true"
		}
	}
	return b
}

// String returns b as a single line, e.g.
// "v0.3.1 (revision 0123456789ab, date 2023-05-01T10:00:00Z)".
// It is empty when nothing is known.
func (b Build) String() string {
	var detail []string
	if b.Revision != "" {
		rev := b.Revision
		if len(rev) > 12 {
			rev = rev[:12]
		}
		if b.Modified {
			rev += "-dirty"
		}
		detail = append(detail, "revision "+rev)
	}
	if b.Time != "" {
		detail = append(detail, "date "+b.Time)
	}
	mod := b.Module
	if mod == "(devel)" {
		mod = ""
	}
	switch {
	case len(detail) == 0:
		return mod
	case mod == "":
		return strings.Join(detail, ", ")
	}
	return mod + " (" + strings.Join(detail, ", ") + ")"
}

// Version returns the version of the binary,
// or false if the build carries no version data.
func Version() (string, bool) {
	b, ok := ReadBuild()
	if !ok {
		return "", false
	}
	s := b.String()
	return s, s != ""
}
