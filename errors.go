// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package docx2md

import (
	"errors"
	"fmt"
	"strings"
)

// UnsupportedFormatError is returned when the input is not a zip container.
type UnsupportedFormatError struct {
	Extension string
	MIMEType  string
}

func (e *UnsupportedFormatError) Error() string {
	parts := []string{"unsupported format"}
	if e.Extension != "" {
		parts = append(parts, fmt.Sprintf("extension=%q", e.Extension))
	}
	if e.MIMEType != "" {
		parts = append(parts, fmt.Sprintf("mime=%q", e.MIMEType))
	}
	return strings.Join(parts, " ")
}

// ContainerError is returned when the document container cannot be opened or
// lacks the expected package structure.
type ContainerError struct {
	Path string
	Err  error
}

func (e *ContainerError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid container: %v", e.Err)
	}
	return fmt.Sprintf("invalid container %s: %v", e.Path, e.Err)
}

func (e *ContainerError) Unwrap() error {
	return e.Err
}

// AssetConversionError is returned when an image cannot be turned into PNG.
// It aborts the whole conversion.
type AssetConversionError struct {
	Index       int
	Part        string
	ContentType string
	Err         error
}

func (e *AssetConversionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "convert image %d", e.Index)
	if e.Part != "" {
		fmt.Fprintf(&b, " (%s", e.Part)
		if e.ContentType != "" {
			fmt.Fprintf(&b, ", %s", e.ContentType)
		}
		b.WriteString(")")
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *AssetConversionError) Unwrap() error {
	return e.Err
}

// PlaceholderMismatchError is returned by caption merging when the number of
// placeholders differs from the number of captions.
type PlaceholderMismatchError struct {
	Placeholders int
	Captions     int
}

func (e *PlaceholderMismatchError) Error() string {
	return fmt.Sprintf("placeholder count %d does not match caption count %d", e.Placeholders, e.Captions)
}

// IsUnsupportedFormat reports whether the error is an UnsupportedFormatError.
func IsUnsupportedFormat(err error) bool {
	var target *UnsupportedFormatError
	return errors.As(err, &target)
}

// IsContainerError reports whether the error is a ContainerError.
func IsContainerError(err error) bool {
	var target *ContainerError
	return errors.As(err, &target)
}

// IsAssetConversionError reports whether the error is an AssetConversionError.
func IsAssetConversionError(err error) bool {
	var target *AssetConversionError
	return errors.As(err, &target)
}

// IsPlaceholderMismatch reports whether the error is a PlaceholderMismatchError.
func IsPlaceholderMismatch(err error) bool {
	var target *PlaceholderMismatchError
	return errors.As(err, &target)
}
