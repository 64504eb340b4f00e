package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"annogen/internal/driver"
	"annogen/internal/pipeline"
	"annogen/internal/ui"
)

type runOutcome struct {
	result driver.Result
	err    error
}

// runWithUI runs req in the background while a progress view follows its
// events on stdout.
func runWithUI(ctx context.Context, title string, req driver.Request) (driver.Result, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		reqCopy := req
		reqCopy.Sink = pipeline.ChannelSink{Ch: events}
		res, err := driver.Run(ctx, reqCopy)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, req.Sources, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	if uiErr != nil {
		// Keep the run from blocking on a view that is gone.
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
