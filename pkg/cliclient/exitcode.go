package cliclient

// Exit codes per the CLI surface's family table: plain commands succeed
// with 0 or fail with 2 (daemon down, bad input, or a 500); exists/visible
// map a legitimate false result to 1; assert maps pass=false to 1.
const (
	ExitOK        = 0
	ExitFalsy     = 1
	ExitError     = 2
)

// ExitForStatus maps a daemon response status to the plain-command exit
// code family (2xx -> 0, everything else -> 2).
func ExitForStatus(status int) int {
	if status >= 200 && status < 300 {
		return ExitOK
	}
	return ExitError
}

// ExitForBool maps the exists/visible family: a successful response with
// result=false is exit 1, not exit 2 -- it answered the question, the
// answer was just no.
func ExitForBool(status int, result bool) int {
	if status < 200 || status >= 300 {
		return ExitError
	}
	if !result {
		return ExitFalsy
	}
	return ExitOK
}

// ExitForAssert maps /assert's pass field the same way.
func ExitForAssert(status int, pass bool) int {
	return ExitForBool(status, pass)
}
