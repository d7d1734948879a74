package reactive

import (
	"fmt"
)

func ExampleReactive() {
	obj := Reactive(NewRecord().Put("name", "dahuang").Put("age", 18))

	NewEffect(func() {
		fmt.Println(obj.Get("age"))
	})

	obj.Set("age", 23)
	obj.Set("address", "beijing") // not read by the effect

	// Output:
	// 18
	// 23
}

func ExampleNewComputed() {
	obj := Reactive(NewRecord().Put("price", 100).Put("num", 10))
	total := NewComputed(func() int {
		fmt.Println("computing")
		return Get[int](obj, "price") * Get[int](obj, "num")
	})

	fmt.Println(total.Value())
	fmt.Println(total.Value())

	obj.Set("num", 20)
	fmt.Println(total.Value())

	// Output:
	// computing
	// 1000
	// 1000
	// computing
	// 2000
}

func ExampleWatch() {
	obj := Reactive(NewRecord().Put("age", 10))

	Watch(func() int { return Get[int](obj, "age") }, func(newValue, oldValue int) {
		fmt.Println(newValue, oldValue)
	})

	obj.Set("age", Get[int](obj, "age")+1)

	// Output:
	// 11 10
}
