package rag

import (
	"context"

	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
)

type latestScopeResolver interface {
	ResolveLatestScope(ctx context.Context) (commonModels.Filter, error)
}

// resolveScope applies document_id, then source, then latest. Only the latest
// lookup can fail.
func resolveScope(ctx context.Context, store latestScopeResolver, scope commonModels.Scope) (commonModels.Filter, error) {
	switch {
	case scope.DocumentId != "":
		return commonModels.Filter{commonModels.MetaDocumentId: scope.DocumentId}, nil
	case scope.Source != "":
		return commonModels.Filter{commonModels.MetaSource: scope.Source}, nil
	case scope.UseLatest:
		return store.ResolveLatestScope(ctx)
	default:
		return nil, nil
	}
}
