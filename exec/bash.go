package exec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	osexec "os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/moczadlo/relay"
)

type bashArgs struct {
	Command string `json:"command" jsonschema:"description=The bash command to execute" validate:"required"`
	Timeout int    `json:"timeout,omitempty" jsonschema:"description=Timeout in milliseconds (default: 120000)"`
}

const defaultBashTimeout = 120 * time.Second

const rollingBufSize = 2 * DefaultMaxBytes

// BashTool returns the bash tool.
func BashTool() relay.Tool {
	return relay.Tool{
		Name: "bash",
		Description: fmt.Sprintf(
			"Execute a bash command. Output is truncated to the last %d lines or %dKB.",
			DefaultMaxLines, DefaultMaxBytes/1024,
		),
		Schema:  relay.SchemaFor[bashArgs](),
		Handler: executeBash,
	}
}

// executeBash runs a bash command and returns the result with separate
// stdout/stderr, output sanitization, and tail truncation. The command runs
// in its own process group so a timeout kills the whole tree.
func executeBash(ctx context.Context, args json.RawMessage) (*relay.ToolResult, error) {
	a, err := relay.UnmarshalArgs[bashArgs](args)
	if err != nil {
		return relay.ErrorResult(err.Error()), nil
	}

	timeout := defaultBashTimeout
	if a.Timeout > 0 {
		timeout = time.Duration(a.Timeout) * time.Millisecond
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := osexec.CommandContext(ctx, "bash", "-c", a.Command)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return relay.ErrorResult(fmt.Sprintf("failed to create stdout pipe: %s", err)), nil
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return relay.ErrorResult(fmt.Sprintf("failed to create stderr pipe: %s", err)), nil
	}

	if err := cmd.Start(); err != nil {
		return relay.ErrorResult(fmt.Sprintf("failed to start command: %s", err)), nil
	}

	stdoutC := NewOutputCollector(rollingBufSize)
	stderrC := NewOutputCollector(rollingBufSize)

	stdoutDone := make(chan struct{})
	stderrDone := make(chan struct{})
	go func() { _, _ = io.Copy(stdoutC, stdoutPipe); close(stdoutDone) }()
	go func() { _, _ = io.Copy(stderrC, stderrPipe); close(stderrDone) }()

	<-stdoutDone
	<-stderrDone
	waitErr := cmd.Wait()

	exitCode := 0
	isError := false
	if waitErr != nil {
		var exitErr *osexec.ExitError
		isRealExit := errors.As(waitErr, &exitErr) && exitErr.ExitCode() >= 0
		if !isRealExit && ctx.Err() != nil {
			return formatTimeoutResult(ctx.Err(), stdoutC, stderrC), nil
		}
		isError = true
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	return formatResult(exitCode, isError, stdoutC, stderrC), nil
}

// processOutput sanitizes and truncates collector output.
func processOutput(c *OutputCollector) TruncateResult {
	raw := string(c.Bytes())
	clean := Sanitize(raw)
	tr := TruncateTail(clean, DefaultMaxLines, DefaultMaxBytes)
	// Override total lines with the collector's accurate count; the rolling
	// buffer may have dropped early data. TotalNewlines counts \n characters,
	// so add 1 for an unterminated final line.
	total := c.TotalNewlines()
	if len(raw) > 0 && raw[len(raw)-1] != '\n' {
		total++
	}
	tr.TotalLines = total
	return tr
}

func formatResult(exitCode int, isError bool, stdout, stderr *OutputCollector) *relay.ToolResult {
	stdoutTR := processOutput(stdout)
	stderrTR := processOutput(stderr)

	var b strings.Builder
	if stdoutTR.Content != "" {
		fmt.Fprintf(&b, "stdout:\n%s\n", stdoutTR.Content)
	}
	if stderrTR.Content != "" {
		fmt.Fprintf(&b, "stderr:\n%s\n", stderrTR.Content)
	}
	fmt.Fprintf(&b, "exit code: %d", exitCode)

	appendTruncationNotice(&b, "stdout", stdoutTR)
	appendTruncationNotice(&b, "stderr", stderrTR)

	return &relay.ToolResult{
		Content: []relay.ContentBlock{relay.TextBlock{Text: b.String()}},
		IsError: isError,
	}
}

func formatTimeoutResult(ctxErr error, stdout, stderr *OutputCollector) *relay.ToolResult {
	stdoutTR := processOutput(stdout)
	stderrTR := processOutput(stderr)

	var b strings.Builder
	fmt.Fprintf(&b, "command timed out: %s\n", ctxErr)
	if stdoutTR.Content != "" {
		fmt.Fprintf(&b, "\nstdout (partial):\n%s\n", stdoutTR.Content)
	}
	if stderrTR.Content != "" {
		fmt.Fprintf(&b, "\nstderr (partial):\n%s\n", stderrTR.Content)
	}

	appendTruncationNotice(&b, "stdout", stdoutTR)
	appendTruncationNotice(&b, "stderr", stderrTR)

	return &relay.ToolResult{
		Content: []relay.ContentBlock{relay.TextBlock{Text: b.String()}},
		IsError: true,
	}
}

func appendTruncationNotice(b *strings.Builder, name string, tr TruncateResult) {
	if !tr.Truncated {
		return
	}
	fmt.Fprintf(b, "\n[%s: Showing last %d of %d lines]", name, tr.OutputLines, tr.TotalLines)
}
