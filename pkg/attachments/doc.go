// Package attachments owns the upload and delete lifecycle of application
// attachments.
//
// A Manager holds the attachment list shared by every attachment widget of
// one application, the pending uploads, and the attachment ids bound to
// each form field. Widgets read from it (it implements the FileName lookup
// the widget renderers need) and change it only through its methods:
//
//	upload:  Uploading -> Uploaded | Cancelled | Failed
//	delete:  Uploaded  -> Deleting -> removed | Failed
//
// Uploads are optimistic: a placeholder is listed as soon as StartUpload
// returns. Deletes are not: the attachment stays listed until the API
// confirms the removal.
package attachments
