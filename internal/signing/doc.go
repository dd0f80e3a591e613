// Package signing reads keystore credentials from a Java style properties file
// (conventionally key.properties at the project root) and resolves them into a
// signing identity per build variant. A missing file and a missing or empty key
// are both reported as sentinel errors so callers can abort the build.
package signing
