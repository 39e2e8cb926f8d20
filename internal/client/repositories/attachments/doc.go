// Package attachments persists the attachment list of each parent resource
// on the client.
//
// After every upload pass the records created by the server are merged into
// the list of their parent (a project, a certification or a portfolio), so
// the list survives restarts and can be shown without another round trip.
//
// Typical usage:
//
//	repo := attachments.NewSQLiteRepository(db)
//	_ = repo.Merge(ctx, models.KindProjectAttachment, "42", res.Attachments)
//	list, _ := repo.ListByParent(ctx, models.KindProjectAttachment, "42")
package attachments
