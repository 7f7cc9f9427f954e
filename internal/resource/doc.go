// Package resource discovers named configuration resources along an ordered
// search path.
//
// A search path is a list of Sources, highest precedence first:
//   - DirSource: a directory on the OS filesystem
//   - MemorySource: an in-memory set of files (useful for testing)
//   - EmbedSource: a subtree of an fs.FS, typically an embed.FS compiled
//     into the binary
//
// Discovery only reports where a resource exists. Content is read later via
// Resource.Read, so read failures surface to the caller that decodes it.
package resource
