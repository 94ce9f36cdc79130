// Command lambda serves one Remote Settings command on the AWS Lambda
// runtime. The command is named by COMMAND, or by the last dotted segment of
// the configured handler (e.g. "aws_lambda.refresh_signature").
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/app"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/entrypoints"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/invocation"
)

func main() {
	a, err := app.Load(app.DefaultOptions())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	name, err := resolveCommand(os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	entry, ok := a.Entrypoints.Lookup(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "lambda: unknown command %q (known: %s)\n", name, strings.Join(a.Entrypoints.Names(), ", "))
		os.Exit(1)
	}

	a.Log.Info("lambda: serving %s", name)
	lambda.Start(handler(a, entry))
}

// handler adapts an entrypoint to the runtime. The reporter is flushed after
// every invocation since the runtime may freeze the process right after.
func handler(a *app.App, entry entrypoints.Func) func(context.Context, invocation.Event) (any, error) {
	return func(ctx context.Context, event invocation.Event) (any, error) {
		defer a.Reporter.Flush(app.FlushTimeout)

		ictx := &invocation.Context{}
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			ictx.InvocationID = lc.AwsRequestID
		}
		if len(event) == 0 {
			event = nil
		}
		return entry(ctx, event, ictx)
	}
}

func resolveCommand(getenv func(string) string) (string, error) {
	if name := getenv("COMMAND"); name != "" {
		return name, nil
	}
	h := getenv("_HANDLER")
	if h == "" {
		return "", errors.New("lambda: set COMMAND or _HANDLER")
	}
	return h[strings.LastIndex(h, ".")+1:], nil
}
