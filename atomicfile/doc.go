/*
Package atomicfile replaces files so that readers see either the old
content or the complete new content, never a partial write.

To rewrite a file robustly we should:

- write the new content to a temporary file in the same directory

- handle errors returned by `Write()`, `Sync()` and `Close()`

- rename the temporary file over the destination only if all of them succeeded

- remove the temporary file otherwise

Typical use:

	func rewrite(path string, data []byte) error {
		f, err := atomicfile.New(path)
		if err != nil {
			return err
		}
		// no-op after a successful Close()
		defer f.Abort()

		if _, err = f.Write(data); err != nil {
			return err
		}
		return f.Close()
	}
*/
package atomicfile
