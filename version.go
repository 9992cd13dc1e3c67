package via

// Version is the current via release. The generated module's go.mod
// pins the runtime to this version.
const Version = "0.4.2"
