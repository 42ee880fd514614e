package greeting

import (
	"context"
	"fmt"

	mcp "greeting/internal/mcp"
)

func greetingTool() mcp.Descriptor {
	return mcp.Descriptor{
		Kind:        mcp.KindTool,
		Name:        "greeting",
		Description: "Greets the user in Korean, English or Japanese.",
		Schema: mcp.Schema(
			mcp.StringParam("name", "Name of the person to greet"),
			mcp.EnumParam("language", "Greeting language (default: korean)", "korean", "english", "japanese").
				WithDefault("korean"),
		),
		Handler: greet,
	}
}

func greet(_ context.Context, args mcp.Args) (mcp.Result, error) {
	name := args.String("name")
	switch args.String("language") {
	case "english":
		return mcp.Text(fmt.Sprintf("Hello, %s! Nice to meet you!", name)), nil
	case "japanese":
		return mcp.Text(fmt.Sprintf("こんにちは、%sさん！はじめまして！", name)), nil
	default:
		return mcp.Text(fmt.Sprintf("안녕하세요, %s님! 만나서 반갑습니다!", name)), nil
	}
}
