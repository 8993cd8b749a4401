package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxMessageLength = 40

// More than this many allowed special characters counts as abuse
const maxSpecialCharacters = 10

var (
	allowedSpecialCharacters = "! []:_-"
	disallowedChars          = regexp.MustCompile(`[^a-zA-Z0-9! \[\]:_-]`)
)

// Message runs the standard player-facing answer pipeline over content for
// the given command prefix: not-empty, prefix, length, charset, special
// character abuse, whitespace-separated answer. Order matters; the caller
// surfaces the first failure's message, if any, as a channel reply.
func Message(content, command string) Result {
	return Run(
		NotEmpty(content, command),
		StartsWithCommand(content, command),
		ValidLength(content, command),
		ValidChars(content),
		NoSpecialCharacterAbuse(content),
		AnswerSeparatedByWhitespace(content, command),
	)
}

// NotEmpty rejects empty messages
func NotEmpty(content, command string) Check {
	return func() Result {
		if content == "" {
			return Fail(fmt.Sprintf("Hmmm your message is empty, try to use `%s <x>`", command))
		}
		return OK()
	}
}

// StartsWithCommand silently rejects messages not addressed to the command
func StartsWithCommand(content, command string) Check {
	return func() Result {
		if hasPrefixFold(content, command) {
			return OK()
		}
		return FailSilent()
	}
}

// ValidLength rejects messages over the answer length cap, counted in
// characters rather than bytes
func ValidLength(content, command string) Check {
	return func() Result {
		if utf8.RuneCountInString(content) > maxMessageLength {
			return Fail(fmt.Sprintf(
				"Are you writing a thesis or what? To play the game use `%s <x>`, "+
					"to write your thesis use a private chat with Meir", command))
		}
		return OK()
	}
}

// ValidChars rejects any character outside letters, digits and the
// allowed special set
func ValidChars(content string) Check {
	return func() Result {
		if disallowedChars.MatchString(content) {
			return Fail("What are you cooking? Use english alphabet smartass or your answer will be ignored!")
		}
		return OK()
	}
}

// NoSpecialCharacterAbuse rejects messages stuffed with allowed special characters
func NoSpecialCharacterAbuse(content string) Check {
	return func() Result {
		count := 0
		for _, c := range content {
			if strings.ContainsRune(allowedSpecialCharacters, c) {
				count++
			}
		}
		if count > maxSpecialCharacters {
			return Fail("If you are bored, why not play tag with charrs outside the northern walls?")
		}
		return OK()
	}
}

// AnswerSeparatedByWhitespace requires whitespace between command and answer
func AnswerSeparatedByWhitespace(content, command string) Check {
	return func() Result {
		if len(content) <= len(command) || !unicode.IsSpace(rune(content[len(command)])) {
			return Fail(fmt.Sprintf(
				"You fool, your command is incorrect! Use `%s <x>` "+
					"and don't waste my time checking such nonsense.", command))
		}
		return OK()
	}
}

// Answer extracts the content following command, with all spaces removed
func Answer(content, command string) string {
	if len(content) < len(command) {
		return ""
	}
	return strings.ReplaceAll(content[len(command):], " ", "")
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
