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

// Package version describes one build of the relay: package name, release
// tag, build hash, license, and the timestamp the binary was built at. The
// cobra command shell uses it to print --version output and the
// --print-error-code banner.
package version

import "time"

// License identifies the license a binary is distributed under, for
// GetLicenseName/GetLicenseBoiler.
type License uint8

const (
	License_MIT License = iota
	License_Apache_v2
	License_GNU_GPL_v3
	License_GNU_Lesser_GPL_v3
	License_GNU_Affero_GPL_v3
	License_Mozilla_PL_v2
	License_Unlicense
	License_SIL_Open_Font_1_1
	License_Creative_Common_Zero_v1
	License_Creative_Common_Attribution_v4_int
	License_Creative_Common_Attribution_Share_Alike_v4_int
)

// Version reports the build/release metadata of one relay binary.
type Version interface {
	GetPackage() string
	GetDescription() string
	GetBuild() string
	GetRelease() string
	GetAuthor() string
	GetPrefix() string
	GetDate() string
	GetTime() time.Time
	GetAppId() string
	GetHeader() string
	GetInfo() string
	GetRootPackagePath() string

	GetLicenseName() string
	GetLicenseLegal() string
	GetLicenseBoiler(lic ...License) string
	GetLicenseFull() string
}

// NewVersion builds a Version. date is parsed as RFC3339; an unparsable
// date falls back to time.Now(), matching a CI that failed to inject a
// real build timestamp.
func NewVersion(lic License, pkg, description, date, build, release, author, prefix string, rootStruct interface{}, _ int) Version {
	return newModel(lic, pkg, description, date, build, release, author, prefix, rootStruct)
}
