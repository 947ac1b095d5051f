// Package artifacts contains the typed bindings for the GitLab job-artifact
// endpoints: downloading the artifact archive of a ref/job combination or of
// a specific job, fetching single files from inside an archive, and deleting
// a project's artifacts.
//
// The bindings are thin leaves. Authentication, retries and error-status
// translation live in the rest package; a binding only resolves the request
// path from its addressing state (project ID, job ID) and the call-supplied
// identifiers (ref name, job name, artifact path), issues the request, and
// materializes the response into the caller-selected shape (buffered bytes,
// callback-driven chunks, or a lazy chunk iterator — see rest.TransferOptions).
//
// Bindings hold addressing state only. No retrieved bytes, identifiers or
// responses are cached between calls.
package artifacts
