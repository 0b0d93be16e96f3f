package iocli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stdio реализует IO поверх произвольных in/out.
// Пароль читается без эха, только если in является терминалом.
type Stdio struct {
	out    io.Writer
	reader *bufio.Reader
	file   *os.File
}

// NewStdio создает IO для os.Stdin и os.Stdout
func NewStdio() IO {
	return New(os.Stdin, os.Stdout)
}

// New создает IO для заданных потоков
func New(in io.Reader, out io.Writer) IO {
	s := &Stdio{
		out:    out,
		reader: bufio.NewReader(in),
	}
	if f, ok := in.(*os.File); ok {
		s.file = f
	}
	return s
}

func (s *Stdio) Println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	return s.readLine()
}

func (s *Stdio) ReadPassword(prompt string) (string, error) {
	s.Printf("%s", prompt)

	if s.file != nil && term.IsTerminal(int(s.file.Fd())) {
		pwBytes, err := term.ReadPassword(int(s.file.Fd()))
		s.Println("")
		if err != nil {
			return "", err
		}
		return string(pwBytes), nil
	}

	// Не терминал (pipe, тесты): читаем строку как есть
	return s.readLine()
}

func (s *Stdio) readLine() (string, error) {
	input, err := s.reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
