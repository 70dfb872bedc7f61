// Package entries provides the local entry cache: the last snapshot of pass
// holders published by the server.
//
// The cache is replaced wholesale on every successful download and is never
// edited locally. Replace runs inside one transaction so a failed refresh
// leaves the previous snapshot intact.
//
// Typical Usage
//
//	repo := entries.NewSQLiteRepository(db)
//	_ = repo.Replace(ctx, downloaded)
//	e, err := repo.FindBySignature(ctx, claim.Signature)
//	if errors.Is(err, common.ErrorNotFound) { ... }
package entries
