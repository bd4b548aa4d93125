package gcode

import (
	"fmt"
	"strconv"
	"strings"
)

// Parses a string, and returns an AST.
// Every block remembers its source line, so untouched blocks export verbatim.
func Parse(input string) (doc *Document, err error) {

	const (
		normal = iota
		comment
		eolcomment
		word
		text
	)

	var (
		document    Document
		curBlock    Block = Block{}
		state       int   = normal
		lastNewline int   = 0
		lineStart   int   = 0
		lineNumber  int   = 1
		buffer      strings.Builder
		address     rune
	)

	if input == "" {
		return &document, nil
	}
	if !strings.HasSuffix(input, "\n") {
		input += "\n"
	}

	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%s", r)
		}
	}()

	parserPanic := func(idx int, err string) {
		panic(fmt.Sprintf("Line %d, pos %d: %s", lineNumber, idx-lastNewline+1, err))
	}

	endBlock := func(idx int) {
		raw := input[lineStart:idx]
		if document.newline == "" {
			document.newline = "\n"
			if strings.HasSuffix(raw, "\r") {
				document.newline = "\r\n"
			}
		}
		curBlock.raw = strings.TrimSuffix(raw, "\r")
		curBlock.modified = false
		document.AppendBlock(curBlock)
		curBlock = Block{}
		lastNewline = idx + 1
		lineStart = idx + 1
		lineNumber++
	}

	var parseNormal func(c rune, idx int)

	startText := func(s string) {
		state = text
		buffer.Reset()
		buffer.WriteString(s)
	}

	parseNormal = func(c rune, idx int) {
		switch c {
		case '/':
			if idx-lastNewline == 0 {
				curBlock.BlockDelete = true
				lastNewline--
			} else {
				startText(string(c))
			}
		case '%':
			fm := Filemarker{}
			curBlock.AppendNode(&fm)
		case '(':
			state = comment
		case ';':
			state = eolcomment
		case '\n':
			endBlock(idx)
		case ' ', '\t', '\r':
			// Ignore
			return
		default:
			if c >= 'a' && c <= 'z' {
				// Lower-case character
				state = word
				address = c - 32 // Make uppercase
			} else if (c >= 'A' && c <= 'Z') || c == '@' || c == '^' {
				// Upper-case character, @ or ^
				state = word
				address = c
			} else {
				// Quoted arguments and the like are kept as they are
				startText(string(c))
			}
		}
	}

	parseComment := func(c rune, idx int) {
		switch c {
		case ')':
			state = normal
			cm := Comment{buffer.String(), false}
			curBlock.AppendNode(&cm)
			buffer.Reset()
		case '\n':
			parserPanic(idx, "Non-terminated comment")
		default:
			buffer.WriteRune(c)
		}
	}

	parseEOLComment := func(c rune, idx int) {
		switch c {
		case '\n':
			state = normal
			cm := Comment{strings.TrimSuffix(buffer.String(), "\r"), true}
			curBlock.AppendNode(&cm)
			buffer.Reset()
			parseNormal(c, idx)
		default:
			buffer.WriteRune(c)
		}
	}

	parseText := func(c rune, idx int) {
		switch c {
		case '\n', ';':
			state = normal
			t := Text{strings.TrimRight(buffer.String(), " \t\r")}
			curBlock.AppendNode(&t)
			buffer.Reset()
			parseNormal(c, idx)
		default:
			buffer.WriteRune(c)
		}
	}

	parseWord := func(c rune, idx int) {
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' {
			// [0-9\.\-\+]
			buffer.WriteRune(c)
			return
		}
		if buffer.Len() == 0 && c != '\n' && c != ';' && c != ' ' && c != '\t' && c != '\r' {
			// An address followed by anything but a number starts free text
			startText(string(address) + string(c))
			return
		}

		// End of command
		state = normal
		if buffer.Len() == 0 {
			t := Text{string(address)}
			curBlock.AppendNode(&t)
		} else {
			f, err := strconv.ParseFloat(buffer.String(), 64)
			if err != nil {
				parserPanic(idx, fmt.Sprintf("Invalid value for word %c: %s", address, buffer.String()))
			}
			w := Word{address, f}
			curBlock.AppendNode(&w)
		}
		buffer.Reset()
		parseNormal(c, idx)
	}

	for idx, c := range input {
		switch state {
		case normal:
			parseNormal(c, idx)
		case comment:
			parseComment(c, idx)
		case eolcomment:
			parseEOLComment(c, idx)
		case word:
			parseWord(c, idx)
		case text:
			parseText(c, idx)
		}
	}
	return &document, nil
}
