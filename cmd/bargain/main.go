// Command bargain 付款方议价客户端
package main

func main() {
	Execute()
}
