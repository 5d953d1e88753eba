package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fwojciec/idmbatch"
	"github.com/fwojciec/idmbatch/batch"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	settings := deps.Settings
	if settings == nil {
		settings = idmbatch.DefaultSettings()
	}

	source := strings.TrimSpace(c.Source)
	if source == "" {
		source = settings.Source
	}
	if source == "" {
		err := idmbatch.Errorf(idmbatch.EINVALID, "no page URL or file given and none saved")
		fmt.Fprintf(deps.Stderr, "error: %s\n", idmbatch.ErrorMessage(err))
		return err
	}

	size := settings.BatchSize
	if c.Batch != 0 {
		size = c.Batch
	}
	if err := idmbatch.ValidateBatchSize(size); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", idmbatch.ErrorMessage(err))
		return err
	}

	browser := settings.Browser
	if c.Browser != "" {
		b, err := idmbatch.ParseBrowser(c.Browser)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", idmbatch.ErrorMessage(err))
			return err
		}
		browser = b
	}

	execPath := settings.ExecPath
	if c.Exec != "" {
		execPath = c.Exec
	}

	ctrl := deps.Controller
	if err := ctrl.SelectBrowser(browser); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", idmbatch.ErrorMessage(err))
		return err
	}
	if err := ctrl.SetExecPath(execPath); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", idmbatch.ErrorMessage(err))
		return err
	}

	// Remember what was used for next time.
	settings.Source = source
	settings.BatchSize = size
	settings.Browser = browser
	settings.ExecPath = execPath
	if deps.SettingsStore != nil {
		if err := deps.SettingsStore.Save(settings); err != nil {
			fmt.Fprintf(deps.Stderr, "warning: could not save settings: %v\n", err)
		}
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-deps.Interrupts:
				fmt.Fprintln(deps.Stderr, "Interrupt received, aborting...")
				_ = ctrl.Abort()
			}
		}
	}()

	var answers *bufio.Scanner
	if deps.Stdin != nil {
		answers = bufio.NewScanner(deps.Stdin)
	}

	err := ctrl.Start(deps.Ctx, source, size)
	for ctrl.Phase() == idmbatch.PhaseAwaitingContinuation {
		if err != nil {
			flush(deps.Output)
			fmt.Fprintf(deps.Stderr, "error: %s\n", idmbatch.ErrorMessage(err))
			if c.Yes {
				_ = ctrl.Abort()
				return err
			}
		}

		if !c.Yes {
			next, ok := c.ask(deps, answers, ctrl, size)
			if !ok {
				if ctrl.Phase() == idmbatch.PhaseAwaitingContinuation {
					_ = ctrl.Abort()
				}
				flush(deps.Output)
				fmt.Fprintln(deps.Stdout, "Aborted.")
				return nil
			}
			size = next
		}
		err = ctrl.Continue(deps.Ctx, size)
	}
	flush(deps.Output)

	switch {
	case idmbatch.ErrorCode(err) == idmbatch.ECANCELED:
		fmt.Fprintln(deps.Stdout, "Aborted.")
		return nil
	case err != nil:
		fmt.Fprintf(deps.Stderr, "error: %s\n", idmbatch.ErrorMessage(err))
		return err
	}
	return nil
}

// ask prompts until the user continues with a batch size or aborts.
// It reports false on abort or when input runs out.
func (c *RunCmd) ask(deps *Dependencies, answers *bufio.Scanner, ctrl *batch.Controller, size int) (int, bool) {
	if answers == nil {
		return 0, false
	}
	for {
		flush(deps.Output)
		st := ctrl.Status()
		fmt.Fprintf(deps.Stdout, "%d of %d links sent, %d remaining. Send next batch of %d? [Enter to continue, a number to change the size, a to abort]: ",
			st.Cursor, st.Total, st.Remaining(), size)

		if !answers.Scan() {
			fmt.Fprintln(deps.Stdout)
			return 0, false
		}
		if ctrl.Phase() != idmbatch.PhaseAwaitingContinuation {
			return 0, false
		}

		answer := strings.ToLower(strings.TrimSpace(answers.Text()))
		switch answer {
		case "", "y", "yes":
			return size, true
		case "a", "abort", "n", "no", "q":
			return 0, false
		}

		n, err := idmbatch.ParseBatchSize(answer)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", idmbatch.ErrorMessage(err))
			continue
		}
		return n, true
	}
}

func flush(output *batch.AsyncSink) {
	if output != nil {
		output.Flush()
	}
}
