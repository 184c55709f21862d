package lsp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

const headerSeparator = "\r\n\r\n"

// MaxContentLength is the largest Content-Length a frame may declare.
const MaxContentLength = 64 << 20

// MakeFrame prefixes content with its Content-Length header.
func MakeFrame(content []byte) []byte {
	header := fmt.Sprintf("Content-Length: %d%s", len(content), headerSeparator)
	frame := make([]byte, 0, len(header)+len(content))
	frame = append(frame, header...)
	return append(frame, content...)
}

// ExtractContent returns the content of a single frame: the bytes after
// the first blank line. When the header declares a Content-Length, the
// content is cut to that length and a shorter remainder is an error.
func ExtractContent(frame []byte) ([]byte, error) {
	idx := bytes.Index(frame, []byte(headerSeparator))
	if idx < 0 || idx+len(headerSeparator) >= len(frame) {
		return nil, ErrInvalidFrame
	}

	content := frame[idx+len(headerSeparator):]
	length, ok, err := contentLength(frame[:idx])
	if err != nil {
		return nil, err
	}
	if !ok {
		return content, nil
	}
	if length > len(content) {
		return nil, fmt.Errorf("%w: content length %d exceeds %d available bytes", ErrInvalidFrame, length, len(content))
	}
	return content[:length], nil
}

// ScanFrames is a bufio.SplitFunc that yields the content of each
// Content-Length frame in a stream.
func ScanFrames(data []byte, atEOF bool) (advance int, token []byte, err error) {
	idx := bytes.Index(data, []byte(headerSeparator))
	if idx < 0 {
		if atEOF && len(data) > 0 {
			return 0, nil, fmt.Errorf("%w: truncated header", ErrInvalidFrame)
		}
		return 0, nil, nil
	}

	length, ok, err := contentLength(data[:idx])
	if err != nil {
		return 0, nil, err
	}
	if !ok {
		return 0, nil, fmt.Errorf("%w: missing Content-Length header", ErrInvalidFrame)
	}

	start := idx + len(headerSeparator)
	if length > len(data)-start {
		if atEOF {
			return 0, nil, fmt.Errorf("%w: truncated content", ErrInvalidFrame)
		}
		return 0, nil, nil
	}
	end := start + length
	return end, data[start:end], nil
}

// contentLength finds the Content-Length header in a header block.
// Header names are matched case-insensitively; other headers are ignored.
func contentLength(header []byte) (int, bool, error) {
	for _, line := range strings.Split(string(header), "\r\n") {
		length, ok, err := parseHeaderLine(line)
		if err != nil || ok {
			return length, ok, err
		}
	}
	return 0, false, nil
}

func parseHeaderLine(line string) (int, bool, error) {
	name, value, found := strings.Cut(strings.TrimSpace(line), ":")
	if !found || !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
		return 0, false, nil
	}
	length, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || length < 0 {
		return 0, false, fmt.Errorf("%w: bad Content-Length %q", ErrInvalidFrame, strings.TrimSpace(value))
	}
	if length > MaxContentLength {
		return 0, false, fmt.Errorf("%w: Content-Length %d exceeds %d", ErrInvalidFrame, length, MaxContentLength)
	}
	return length, true, nil
}

// FrameReader reads framed message content from a stream.
type FrameReader struct {
	reader *bufio.Reader
}

// NewFrameReader creates a reader over r.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{reader: bufio.NewReaderSize(r, 64*1024)}
}

// ReadFrame reads headers up to the blank line, then exactly
// Content-Length bytes of content.
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	length := -1
	for {
		line, err := fr.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF && line == "" && length < 0 {
				return nil, io.EOF
			}
			if err == io.EOF {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break // End of headers
		}
		n, ok, err := parseHeaderLine(line)
		if err != nil {
			return nil, err
		}
		if ok {
			length = n
		}
	}

	if length < 0 {
		return nil, fmt.Errorf("%w: missing Content-Length header", ErrInvalidFrame)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(fr.reader, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// ReadMessage reads and parses the next message.
func (fr *FrameReader) ReadMessage() (Message, error) {
	content, err := fr.ReadFrame()
	if err != nil {
		return nil, err
	}
	return ParseMessage(content)
}

// FrameWriter writes framed messages to a stream. It is safe for
// concurrent use.
type FrameWriter struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewFrameWriter creates a writer over w.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{writer: w}
}

// WriteFrame writes content with its Content-Length header in one write.
func (fw *FrameWriter) WriteFrame(content []byte) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, err := fw.writer.Write(MakeFrame(content)); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// WriteMessage encodes and writes msg.
func (fw *FrameWriter) WriteMessage(msg Message) error {
	data, err := Encode(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return fw.WriteFrame(data)
}
