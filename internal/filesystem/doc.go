/*
Package filesystem wraps the few filesystem calls the image cache makes
(stat, open, rename, readdir) with retry logic for NFS stale file handles.

The cache directory is the only persistent state of the application and is
commonly placed on a network share. A stale handle (ESTALE) there is
transient, so it is retried with exponential backoff:

  - MaxRetries: 3
  - InitialBackoff: 50ms
  - MaxBackoff: 500ms

Any other error is returned immediately.

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())

Operation timings are reported to the Observer installed with SetObserver,
labelled by the volume a VolumeResolver maps the path to.
*/
package filesystem
