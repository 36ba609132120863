package osutil

const Windows = "windows"

type exitCode int

// ExitError is the status werk exits with when a command fails.
const ExitError exitCode = 1
