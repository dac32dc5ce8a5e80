// Package npm shells out to the Node.js toolchain: npm install for the host
// project and the TypeScript compiler for library builds.
package npm
