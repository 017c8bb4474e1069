/*
 * MIT License
 *
 * Copyright (c) 2026 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package version

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"
)

var licenseNames = map[License]string{
	License_MIT:                                            "MIT",
	License_Apache_v2:                                       "Apache License 2.0",
	License_GNU_GPL_v3:                                      "GNU General Public License v3.0",
	License_GNU_Lesser_GPL_v3:                               "GNU Lesser General Public License v3.0",
	License_GNU_Affero_GPL_v3:                                "GNU Affero General Public License v3.0",
	License_Mozilla_PL_v2:                                   "Mozilla Public License 2.0",
	License_Unlicense:                                       "The Unlicense",
	License_SIL_Open_Font_1_1:                               "SIL Open Font License 1.1",
	License_Creative_Common_Zero_v1:                         "Creative Commons Zero v1.0 Universal",
	License_Creative_Common_Attribution_v4_int:              "Creative Commons Attribution 4.0 International",
	License_Creative_Common_Attribution_Share_Alike_v4_int:  "Creative Commons Attribution Share Alike 4.0 International",
}

// model is the concrete Version. Every field is fixed at build time (via
// NewVersion) and never mutates afterward, so reads need no locking.
type model struct {
	license     License
	pkg         string
	description string
	dateStr     string
	build       string
	release     string
	author      string
	prefix      string
	rootPath    string

	date time.Time
}

func newModel(lic License, pkg, description, dateStr, build, release, author, prefix string, rootStruct interface{}) *model {
	t, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		t = time.Now()
	}

	return &model{
		license:     lic,
		pkg:         pkg,
		description: description,
		dateStr:     dateStr,
		build:       build,
		release:     release,
		author:      author,
		prefix:      prefix,
		rootPath:    rootPackagePath(rootStruct),
		date:        t,
	}
}

func rootPackagePath(rootStruct interface{}) string {
	if rootStruct == nil {
		return ""
	}
	t := reflect.TypeOf(rootStruct)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.PkgPath()
}

func (m *model) GetPackage() string     { return m.pkg }
func (m *model) GetDescription() string { return m.description }
func (m *model) GetBuild() string       { return m.build }
func (m *model) GetRelease() string     { return m.release }
func (m *model) GetAuthor() string      { return fmt.Sprintf("%s (source)", m.author) }
func (m *model) GetPrefix() string      { return strings.ToUpper(m.prefix) }
func (m *model) GetDate() string        { return m.dateStr }
func (m *model) GetTime() time.Time     { return m.date }
func (m *model) GetRootPackagePath() string { return m.rootPath }

func (m *model) GetAppId() string {
	return fmt.Sprintf("%s-%s [Runtime: %s/%s]", m.release, m.build, runtime.GOOS, runtime.GOARCH)
}

func (m *model) GetHeader() string {
	return fmt.Sprintf("%s %s (build %s)", m.pkg, m.release, m.build)
}

func (m *model) GetInfo() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Release: %s\n", m.release)
	fmt.Fprintf(&b, "Build: %s\n", m.build)
	fmt.Fprintf(&b, "Date: %s\n", m.dateStr)
	return b.String()
}

func (m *model) GetLicenseName() string {
	if name, ok := licenseNames[m.license]; ok {
		return name
	}
	return "Unknown"
}

// GetLicenseLegal returns the one-line copyright/legal notice for the
// binary's author and license, not the license's full text.
func (m *model) GetLicenseLegal() string {
	return fmt.Sprintf("Copyright (c) %d %s, distributed under the %s license.", m.date.Year(), m.author, m.GetLicenseName())
}

// GetLicenseBoiler returns the short boilerplate notice conventionally
// printed at the top of a source file under the given license (or the
// binary's own license when none is given).
func (m *model) GetLicenseBoiler(lic ...License) string {
	l := m.license
	if len(lic) > 0 {
		l = lic[0]
	}
	if name, ok := licenseNames[l]; ok {
		return fmt.Sprintf("Licensed under the %s.", name)
	}
	return "All rights reserved."
}

// GetLicenseFull is intentionally a summary, not the verbatim multi-page
// license text: the relay never ships a license file generator, only the
// --version banner.
func (m *model) GetLicenseFull() string {
	return fmt.Sprintf("%s\n\n%s", m.GetLicenseLegal(), m.GetLicenseBoiler())
}
