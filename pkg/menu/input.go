package menu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ssargent/stockdb/pkg/codec"
)

// ErrInvalidInput is returned when a line cannot be parsed as requested
var ErrInvalidInput = errors.New("invalid input")

// Input reads prompted values line by line
type Input struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewInput creates an input reader that prompts on out
func NewInput(in io.Reader, out io.Writer) *Input {
	return &Input{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// ReadLine prints prompt and returns the next line without its line ending.
// io.EOF is returned only when no characters were read.
func (in *Input) ReadLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(in.out, prompt)
	}

	line, err := in.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadName reads a product name, trimmed and truncated to the name capacity
func (in *Input) ReadName(prompt string) (codec.Name, error) {
	line, err := in.ReadLine(prompt)
	if err != nil {
		return "", err
	}
	return codec.NewName(strings.TrimSpace(line)), nil
}

// ReadInt reads a 32-bit integer
func (in *Input) ReadInt(prompt string) (int32, error) {
	line, err := in.ReadLine(prompt)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(line), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidInput, strings.TrimSpace(line))
	}
	return int32(v), nil
}

// ReadInt64 reads a 64-bit integer
func (in *Input) ReadInt64(prompt string) (int64, error) {
	line, err := in.ReadLine(prompt)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidInput, strings.TrimSpace(line))
	}
	return v, nil
}

// ReadFloat reads a price; a decimal comma is accepted
func (in *Input) ReadFloat(prompt string) (float32, error) {
	line, err := in.ReadLine(prompt)
	if err != nil {
		return 0, err
	}
	text := strings.ReplaceAll(strings.TrimSpace(line), ",", ".")
	v, err := strconv.ParseFloat(text, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, strings.TrimSpace(line))
	}
	return float32(v), nil
}
