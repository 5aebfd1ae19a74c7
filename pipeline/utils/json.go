// Copyright 2026 The logship Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package utils

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ToJsonStr encodes v to a json string. Don't use it in data streaming due
// to bad performance and memory allocations
func ToJsonStr(v interface{}) string {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	err := encoder.Encode(v)
	if err != nil {
		return ""
	}
	return strings.TrimRight(buffer.String(), "\n")
}

// BytesCopy returns a copy of the provided slice, the result doesn't share
// the underlying array with buf
func BytesCopy(buf []byte) []byte {
	if len(buf) == 0 {
		return nil
	}
	nb := make([]byte, len(buf))
	copy(nb, buf)
	return nb
}
