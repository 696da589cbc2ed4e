package repl

import (
	"fmt"
)

func (r *REPL) displayError(err error) {
	fmt.Fprintln(r.out, r.formatter.FormatError(err))
	fmt.Fprintln(r.out)
}

func (r *REPL) displayWelcome() {
	surface := r.surface
	if surface == "" {
		surface = "console"
	}
	fmt.Fprint(r.out, r.formatter.FormatWelcome(len(r.store.GetAll()), surface))
}

func (r *REPL) displayHelp() {
	fmt.Fprint(r.out, r.formatter.FormatHelp())
}

func (r *REPL) displayInfo(msg string) {
	fmt.Fprintln(r.out, r.formatter.FormatInfo(msg))
	fmt.Fprintln(r.out)
}

func (r *REPL) displaySystem(msg string) {
	fmt.Fprintln(r.out, r.formatter.FormatSystem(msg))
}

func (r *REPL) displaySuccess(msg string) {
	fmt.Fprintln(r.out, r.formatter.FormatSuccess(msg))
	fmt.Fprintln(r.out)
}
