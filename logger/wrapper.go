package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
)

// WrapProcess launches the given command and relays its stderr. JSON lines
// pass through untouched; once a panic line shows up everything after it is
// buffered and reported together when the child exits. Never returns, the
// wrapper exits with the child's exit code.
func WrapProcess(executable string, arg ...string) {
	wrapLogger := NewLogger("Logs wrapper")
	defer handlePanic(wrapLogger)

	r, w, err := os.Pipe()
	if err != nil {
		wrapLogger.Fatal().Err(err).Msg("Could not create pipe for logs")
		os.Exit(1)
	}

	cmd := exec.Command(executable, arg...)
	cmd.Stderr = w

	if err = cmd.Start(); err != nil {
		wrapLogger.Fatal().Err(err).Msg("Could not launch main process")
		os.Exit(1)
	}
	exitCodeCh := make(chan int)
	logsCh := make(chan []byte)

	go awaitExit(cmd, wrapLogger, exitCodeCh)
	go relayStderr(r, wrapLogger, logsCh)

	panicLogs := strings.Builder{}
	foundPanic := false
	for {
		select {
		case exitCode := <-exitCodeCh:
			reportExit(exitCode, panicLogs.String(), wrapLogger)
		case line := <-logsCh:
			foundPanic = relayLogLine(line, foundPanic, &panicLogs, wrapLogger)
		}
	}
}

func awaitExit(cmd *exec.Cmd, wrapLogger zerolog.Logger, exitCodeCh chan<- int) {
	defer handlePanic(wrapLogger)
	err := cmd.Wait()
	if err == nil {
		exitCodeCh <- 0
		return
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCodeCh <- exitErr.ExitCode()
		return
	}
	exitCodeCh <- 1
}

func relayStderr(r *os.File, wrapLogger zerolog.Logger, logsCh chan<- []byte) {
	defer handlePanic(wrapLogger)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		// Bytes() aliases the scanner's buffer, copy before handing off
		logsCh <- append([]byte(nil), scanner.Bytes()...)
	}
	if err := scanner.Err(); err != nil {
		wrapLogger.Fatal().Err(err).Msg("Error scanning piped main process's Stderr")
		os.Exit(1)
	}
}

func reportExit(exitCode int, panicLogs string, wrapLogger zerolog.Logger) {
	if exitCode == 0 {
		wrapLogger.Info().Msg("Exited with code 0")
	} else {
		wrapLogger.
			Fatal().
			Err(errors.New(panicLogs)).
			Msgf("Panicked and exited with code: %d", exitCode)
	}
	os.Exit(exitCode)
}

func relayLogLine(line []byte, foundPanic bool, panicLogs *strings.Builder, wrapLogger zerolog.Logger) bool {
	if len(line) == 0 {
		return foundPanic
	}
	text := string(line)
	if !foundPanic && strings.HasPrefix(text, "panic") {
		foundPanic = true
	}
	switch {
	case foundPanic:
		panicLogs.WriteString(fmt.Sprintf("%s\n", text))
	case isJSON(line):
		println(text)
	default:
		wrapLogger.Error().Msgf("Got log line that is not JSON formatted: '%s'", text)
	}
	return foundPanic
}

func handlePanic(wrapLogger zerolog.Logger) {
	r := recover()
	if r == nil {
		return
	}
	wrapLogger.Fatal().
		Caller().
		Str("error", fmt.Sprint(r)).
		Str("stack_trace", string(debug.Stack())).
		Msg("Program panicked and exited")
}

func isJSON(b []byte) bool {
	var js json.RawMessage
	err := json.Unmarshal(b, &js)
	return err == nil && js != nil
}
