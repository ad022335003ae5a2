package main

import (
        "reflect"
        "testing"
)

func TestRewriteDirectStepLookupArgs(t *testing.T) {
        t.Parallel()

        tests := []struct {
                name string
                in   []string
                want []string
        }{
                {
                        name: "no args",
                        in:   []string{"devtour"},
                        want: []string{"devtour"},
                },
                {
                        name: "direct step id first token",
                        in:   []string{"devtour", "step-abc123"},
                        want: []string{"devtour", "steps", "show", "step-abc123"},
                },
                {
                        name: "direct step id after value flag",
                        in:   []string{"devtour", "--dir", "./proj", "step-abc123"},
                        want: []string{"devtour", "--dir", "./proj", "steps", "show", "step-abc123"},
                },
                {
                        name: "direct step id after equals flag",
                        in:   []string{"devtour", "--dir=./proj", "step-abc123"},
                        want: []string{"devtour", "--dir=./proj", "steps", "show", "step-abc123"},
                },
                {
                        name: "direct step id after bool flag",
                        in:   []string{"devtour", "--pretty", "step-abc123"},
                        want: []string{"devtour", "--pretty", "steps", "show", "step-abc123"},
                },
                {
                        name: "direct step id after double dash",
                        in:   []string{"devtour", "--dir", "./proj", "--", "step-abc123"},
                        want: []string{"devtour", "--dir", "./proj", "--", "steps", "show", "step-abc123"},
                },
                {
                        name: "normal subcommand not rewritten",
                        in:   []string{"devtour", "steps", "show", "step-abc123"},
                        want: []string{"devtour", "steps", "show", "step-abc123"},
                },
                {
                        name: "tour id not rewritten",
                        in:   []string{"devtour", "tour-abcd1234"},
                        want: []string{"devtour", "tour-abcd1234"},
                },
                {
                        name: "bare prefix not rewritten",
                        in:   []string{"devtour", "step-"},
                        want: []string{"devtour", "step-"},
                },
        }

        for _, tt := range tests {
                t.Run(tt.name, func(t *testing.T) {
                        t.Parallel()
                        got := rewriteDirectStepLookupArgs(tt.in)
                        if !reflect.DeepEqual(got, tt.want) {
                                t.Fatalf("rewriteDirectStepLookupArgs:\n got: %#v\nwant: %#v", got, tt.want)
                        }
                })
        }
}
