// Package shell is the interactive front end of gatehouse.
//
// It reads one command per line, checks the session idle timeout before
// each command, resolves names to directory records and calls into the
// identity core. Secrets are read without echo when stdin is a terminal.
// The shell holds no authorization logic of its own: the directory and
// session decide and audit, the shell only reports the outcome.
//
// The loop is started with App.Run and returns on "exit", "quit" or end
// of input.
package shell
