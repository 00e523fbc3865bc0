package cache_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/websearch/cache"
)

func ExampleNewMemoryCache() {
	c := cache.NewMemoryCache(cache.DefaultPolicy())
	ctx := context.Background()

	_ = c.Set(ctx, "my-key", []byte("hello"))

	value, ok := c.Get(ctx, "my-key")
	if ok {
		fmt.Println("Value:", string(value))
	}
	// Output:
	// Value: hello
}

func ExampleDefaultKeyer_Key() {
	k := cache.NewDefaultKeyer()

	a, _ := k.Key("google_cse_search", map[string]any{"q": "go", "num": 2, "cx": "engine"})
	b, _ := k.Key("google_cse_search", map[string]any{"cx": "engine", "num": 2, "q": "go"})

	fmt.Println("Length:", len(a))
	fmt.Println("Order independent:", a == b)
	// Output:
	// Length: 64
	// Order independent: true
}

func ExampleCacheMiddleware_Execute() {
	store := cache.NewStore(cache.NewMemoryCache(cache.DefaultPolicy()))
	mw := cache.NewCacheMiddleware(store, cache.DefaultPolicy(), nil)
	ctx := context.Background()

	load := func(context.Context) (any, error) {
		return map[string]string{"answer": "42"}, nil
	}

	var first, second map[string]string
	hit1, _ := mw.Execute(ctx, "demo", map[string]any{"q": "life"}, &first, load)
	hit2, _ := mw.Execute(ctx, "demo", map[string]any{"q": "life"}, &second, load)

	fmt.Println(hit1, first["answer"])
	fmt.Println(hit2, second["answer"])
	// Output:
	// false 42
	// true 42
}
