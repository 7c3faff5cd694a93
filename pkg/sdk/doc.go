// Package profilematch embeds the profile matching engine in a Go program.
//
// The client wires the same store, embedding and matching stack as the
// profilematch HTTP service, minus the HTTP layer.
//
//	client, _ := profilematch.New(ctx,
//	    profilematch.WithRedis("localhost:6379", ""),
//	    profilematch.WithOpenAI("http://localhost:11434/v1", "", "all-MiniLM-L6-v2"),
//	)
//	defer client.Close()
//
//	id, _ := client.Add(ctx, profilematch.ProfileInput{
//	    Name:        "Alex",
//	    Description: "I love hiking and sci-fi books",
//	})
//	matches, _ := client.Search(ctx, "outdoorsy reader", 3, id)
//
// Any store is supported: Redis or Valkey with the search module, Qdrant,
// or PostgreSQL with pgvector.
package profilematch
