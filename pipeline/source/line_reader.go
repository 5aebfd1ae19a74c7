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

package source

import (
	"bufio"
	"io"

	"github.com/logship/logship/pipeline/utils"
)

type (
	lineReader struct {
		r *bufio.Reader
	}
)

func newLineReader(ioRdr io.Reader, bufSize int) *lineReader {
	r := new(lineReader)
	r.r = bufio.NewReaderSize(ioRdr, bufSize)
	return r
}

// readLine reads the next line from the stream, including its trailing
// newline byte. A line longer than the buffer is returned in pieces, the
// trailing newline then arrives with the last piece. The returned slice
// doesn't share the underlying array with the reader's buffer.
//
// It follows the io.Reader.Read contract: the last piece of data may
// arrive together with io.EOF.
func (r *lineReader) readLine() ([]byte, error) {
	line, err := r.r.ReadSlice('\n')
	line = utils.BytesCopy(line)
	if err == bufio.ErrBufferFull {
		return line, nil
	}
	return line, err
}
