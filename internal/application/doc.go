// Package application wires configuration, the signing properties loader and
// the variant registry together. It locates key.properties the way a build
// script looks it up at the project root, resolves signing identities per
// build variant or build type, and renders them for the calling toolchain.
package application
