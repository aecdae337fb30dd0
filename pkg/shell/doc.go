// Package shell provides the file backed stages used to run pipelines over real files:
// a Session holding a working directory, line sources and writing drains.
// Every file access goes through an afero.Fs.
package shell
