// Package embedder generates vector embeddings for chunk text via
// pluggable providers.
//
// Two providers are implemented:
//
//   - Ollama: a local inference server (default model nomic-embed-text,
//     768 dimensions). This is the default when no API key is present.
//   - OpenAI: the hosted embeddings API (text-embedding-3-small, 1536
//     dimensions).
//
// Both providers batch requests, retry with exponential backoff, and
// share an LRU cache keyed by the SHA-256 hash of the input text so
// unchanged chunks are never re-embedded:
//
//	emb, err := embedder.New(embedder.Config{
//	    Provider:  embedder.ProviderOllama,
//	    CacheSize: 10000,
//	})
//	if err != nil {
//	    return err
//	}
//	defer emb.Close()
//
//	embs, err := emb.GenerateBatch(ctx, texts)
//
// When Config.Provider is empty, New consults DOCCHUNK_EMBEDDING_PROVIDER,
// or auto-detects: an OPENAI_API_KEY in the environment selects OpenAI,
// otherwise a local Ollama server is assumed.
package embedder
