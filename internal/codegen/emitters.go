package codegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	doubleQuoteEscaper = strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	singleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)
)

// curlSample renders a shell invocation; params are folded into the URL
func curlSample(req request) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("curl -X %s %s", req.Method, shellQuote(req.FullURL)))
	for _, h := range req.Headers {
		sb.WriteString(fmt.Sprintf(" \\\n  -H %s", shellQuote(h.Name+": "+h.Value)))
	}
	if req.HasBody {
		sb.WriteString(fmt.Sprintf(" \\\n  -d %s", shellQuote(req.Body)))
	}
	return sb.String()
}

type fetchInit struct {
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
}

func newFetchInit(req request) fetchInit {
	init := fetchInit{Method: req.Method, Headers: headerMap(req.Headers)}
	if req.HasBody {
		init.Body = req.Body
	}
	return init
}

func fetchSample(req request) string {
	return fmt.Sprintf("fetch(%s, %s)\n  .then(r => r.json())\n  .then(console.log);",
		jsLiteral(req.FullURL), jsLiteral(newFetchInit(req)))
}

func fetchTSSample(req request) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("const init: RequestInit = %s;\n", jsLiteral(newFetchInit(req))))
	sb.WriteString(fmt.Sprintf("const res = await fetch(%s, init);\n", jsLiteral(req.FullURL)))
	sb.WriteString("const data = await res.json();\n")
	sb.WriteString("console.log(data);")
	return sb.String()
}

type axiosConfig struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Params  map[string]string `json:"params,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Data    string            `json:"data,omitempty"`
}

func newAxiosConfig(req request) axiosConfig {
	cfg := axiosConfig{
		Method:  strings.ToLower(req.Method),
		URL:     req.URL,
		Params:  req.Query,
		Headers: headerMap(req.Headers),
	}
	if len(cfg.Params) == 0 {
		cfg.Params = nil
	}
	if req.HasBody {
		cfg.Data = req.Body
	}
	return cfg
}

func axiosSample(req request) string {
	return fmt.Sprintf("axios(%s)\n  .then(res => console.log(res.data));", jsLiteral(newAxiosConfig(req)))
}

func axiosTSSample(req request) string {
	var sb strings.Builder
	sb.WriteString("import axios, { type AxiosRequestConfig } from 'axios';\n\n")
	sb.WriteString(fmt.Sprintf("const config: AxiosRequestConfig = %s;\n", jsLiteral(newAxiosConfig(req))))
	sb.WriteString("const { data } = await axios(config);\n")
	sb.WriteString("console.log(data);")
	return sb.String()
}

// pythonSample uses requests with a structured params dict
func pythonSample(req request) string {
	var sb strings.Builder
	sb.WriteString("import requests\n\n")
	sb.WriteString(fmt.Sprintf("url = %s\n", doubleQuoted(req.URL)))

	args := []string{doubleQuoted(req.Method), "url"}

	if len(req.Query) > 0 {
		sb.WriteString("params = {\n")
		for _, k := range sortedKeys(req.Query) {
			sb.WriteString(fmt.Sprintf("    %s: %s,\n", doubleQuoted(k), doubleQuoted(req.Query[k])))
		}
		sb.WriteString("}\n")
		args = append(args, "params=params")
	}

	if len(req.Headers) > 0 {
		sb.WriteString("headers = {\n")
		for _, h := range req.Headers {
			sb.WriteString(fmt.Sprintf("    %s: %s,\n", doubleQuoted(h.Name), doubleQuoted(h.Value)))
		}
		sb.WriteString("}\n")
		args = append(args, "headers=headers")
	}

	if req.HasBody {
		sb.WriteString(fmt.Sprintf("payload = %s\n", doubleQuoted(req.Body)))
		args = append(args, "data=payload")
	}

	sb.WriteString(fmt.Sprintf("\nresponse = requests.request(%s)\n", strings.Join(args, ", ")))
	sb.WriteString("print(response.status_code)\n")
	sb.WriteString("print(response.text)")
	return sb.String()
}

func csharpSample(req request) string {
	var sb strings.Builder
	sb.WriteString("using System;\nusing System.Net.Http;\nusing System.Text;\nusing System.Threading.Tasks;\n\n")
	sb.WriteString("class Program\n{\n    static async Task Main()\n    {\n")
	sb.WriteString("        using var client = new HttpClient();\n")
	sb.WriteString(fmt.Sprintf("        var request = new HttpRequestMessage(new HttpMethod(%s), %s);\n",
		doubleQuoted(req.Method), doubleQuoted(req.FullURL)))
	for _, h := range req.Headers {
		sb.WriteString(fmt.Sprintf("        request.Headers.TryAddWithoutValidation(%s, %s);\n",
			doubleQuoted(h.Name), doubleQuoted(h.Value)))
	}
	if req.HasBody {
		sb.WriteString(fmt.Sprintf("        request.Content = new StringContent(%s, Encoding.UTF8, %s);\n",
			doubleQuoted(req.Body), doubleQuoted(contentType(req))))
	}
	sb.WriteString("        var response = await client.SendAsync(request);\n")
	sb.WriteString("        Console.WriteLine((int)response.StatusCode);\n")
	sb.WriteString("        Console.WriteLine(await response.Content.ReadAsStringAsync());\n")
	sb.WriteString("    }\n}")
	return sb.String()
}

func goSample(req request) string {
	var sb strings.Builder
	sb.WriteString("package main\n\nimport (\n\t\"fmt\"\n\t\"io\"\n\t\"net/http\"\n")
	if req.HasBody {
		sb.WriteString("\t\"strings\"\n")
	}
	sb.WriteString(")\n\nfunc main() {\n")

	bodyArg := "nil"
	if req.HasBody {
		sb.WriteString(fmt.Sprintf("\tbody := strings.NewReader(%s)\n", strconv.Quote(req.Body)))
		bodyArg = "body"
	}
	sb.WriteString(fmt.Sprintf("\treq, err := http.NewRequest(%s, %s, %s)\n",
		strconv.Quote(req.Method), strconv.Quote(req.FullURL), bodyArg))
	sb.WriteString("\tif err != nil {\n\t\tpanic(err)\n\t}\n")
	for _, h := range req.Headers {
		sb.WriteString(fmt.Sprintf("\treq.Header.Set(%s, %s)\n", strconv.Quote(h.Name), strconv.Quote(h.Value)))
	}
	sb.WriteString("\n\tresp, err := http.DefaultClient.Do(req)\n")
	sb.WriteString("\tif err != nil {\n\t\tpanic(err)\n\t}\n")
	sb.WriteString("\tdefer resp.Body.Close()\n\n")
	sb.WriteString("\tdata, _ := io.ReadAll(resp.Body)\n")
	sb.WriteString("\tfmt.Println(resp.Status)\n")
	sb.WriteString("\tfmt.Println(string(data))\n}")
	return sb.String()
}

func javaSample(req request) string {
	var sb strings.Builder
	sb.WriteString("import java.net.URI;\nimport java.net.http.HttpClient;\nimport java.net.http.HttpRequest;\nimport java.net.http.HttpResponse;\nimport java.time.Duration;\n\n")
	sb.WriteString("public class ApiClient {\n    public static void main(String[] args) throws Exception {\n")
	sb.WriteString("        var client = HttpClient.newHttpClient();\n")

	publisher := "HttpRequest.BodyPublishers.noBody()"
	if req.HasBody {
		sb.WriteString(fmt.Sprintf("        var body = %s;\n", javaTextBlock(req.Body)))
		publisher = "HttpRequest.BodyPublishers.ofString(body)"
	}

	sb.WriteString("        var request = HttpRequest.newBuilder()\n")
	sb.WriteString(fmt.Sprintf("            .uri(URI.create(%s))\n", doubleQuoted(req.FullURL)))
	for _, h := range req.Headers {
		sb.WriteString(fmt.Sprintf("            .header(%s, %s)\n", doubleQuoted(h.Name), doubleQuoted(h.Value)))
	}
	sb.WriteString(fmt.Sprintf("            .method(%s, %s)\n", doubleQuoted(req.Method), publisher))
	sb.WriteString("            .timeout(Duration.ofSeconds(30))\n")
	sb.WriteString("            .build();\n")
	sb.WriteString("        var response = client.send(request, HttpResponse.BodyHandlers.ofString());\n")
	sb.WriteString("        System.out.println(response.statusCode());\n")
	sb.WriteString("        System.out.println(response.body());\n")
	sb.WriteString("    }\n}")
	return sb.String()
}

func phpSample(req request) string {
	var sb strings.Builder
	sb.WriteString("<?php\n$ch = curl_init();\ncurl_setopt_array($ch, [\n")
	sb.WriteString(fmt.Sprintf("    CURLOPT_URL => %s,\n", singleQuoted(req.FullURL)))
	sb.WriteString("    CURLOPT_RETURNTRANSFER => true,\n")
	sb.WriteString(fmt.Sprintf("    CURLOPT_CUSTOMREQUEST => %s,\n", singleQuoted(req.Method)))
	if req.HasBody {
		sb.WriteString(fmt.Sprintf("    CURLOPT_POSTFIELDS => %s,\n", singleQuoted(req.Body)))
	}
	sb.WriteString("    CURLOPT_HTTPHEADER => [\n")
	for _, h := range req.Headers {
		sb.WriteString(fmt.Sprintf("        %s,\n", singleQuoted(h.Name+": "+h.Value)))
	}
	sb.WriteString("    ],\n]);\n")
	sb.WriteString("$response = curl_exec($ch);\n")
	sb.WriteString("if ($response === false) {\n    echo 'cURL Error: ' . curl_error($ch) . PHP_EOL;\n}\n")
	sb.WriteString("curl_close($ch);\n")
	sb.WriteString("echo $response;")
	return sb.String()
}

var rubyRequestClasses = map[string]string{
	"GET":     "Get",
	"POST":    "Post",
	"PUT":     "Put",
	"PATCH":   "Patch",
	"DELETE":  "Delete",
	"HEAD":    "Head",
	"OPTIONS": "Options",
}

func rubySample(req request) string {
	var sb strings.Builder
	sb.WriteString("require 'net/http'\nrequire 'uri'\n\n")
	sb.WriteString(fmt.Sprintf("uri = URI.parse(%s)\n", singleQuoted(req.FullURL)))
	sb.WriteString("http = Net::HTTP.new(uri.host, uri.port)\n")
	sb.WriteString("http.use_ssl = (uri.scheme == 'https')\n\n")

	if class, ok := rubyRequestClasses[req.Method]; ok {
		sb.WriteString(fmt.Sprintf("request = Net::HTTP::%s.new(uri) # %s\n", class, req.Method))
	} else {
		sb.WriteString(fmt.Sprintf("request = Net::HTTPGenericRequest.new(%s, true, true, uri.request_uri)\n",
			singleQuoted(req.Method)))
	}
	for _, h := range req.Headers {
		sb.WriteString(fmt.Sprintf("request[%s] = %s\n", singleQuoted(h.Name), singleQuoted(h.Value)))
	}
	if req.HasBody {
		sb.WriteString(fmt.Sprintf("request.body = %s\n", singleQuoted(req.Body)))
	}
	sb.WriteString("\nresponse = http.request(request)\n")
	sb.WriteString("puts response.code\n")
	sb.WriteString("puts response.body")
	return sb.String()
}

func swiftSample(req request) string {
	var sb strings.Builder
	sb.WriteString("import Foundation\n\n")
	sb.WriteString(fmt.Sprintf("let url = URL(string: %s)!\n", doubleQuoted(req.FullURL)))
	sb.WriteString("var request = URLRequest(url: url)\n")
	sb.WriteString(fmt.Sprintf("request.httpMethod = %s\n", doubleQuoted(req.Method)))
	for _, h := range req.Headers {
		sb.WriteString(fmt.Sprintf("request.addValue(%s, forHTTPHeaderField: %s)\n",
			doubleQuoted(h.Value), doubleQuoted(h.Name)))
	}
	if req.HasBody {
		sb.WriteString(fmt.Sprintf("request.httpBody = %s.data(using: .utf8)\n", doubleQuoted(req.Body)))
	}
	sb.WriteString("\nlet task = URLSession.shared.dataTask(with: request) { data, response, error in\n")
	sb.WriteString("    if let error = error {\n        print(error)\n        return\n    }\n")
	sb.WriteString("    guard let data = data else { return }\n")
	sb.WriteString("    print(String(data: data, encoding: .utf8) ?? \"\")\n")
	sb.WriteString("}\ntask.resume()")
	return sb.String()
}

// jsLiteral renders v as an indented JSON value, which is also valid JS/TS
func jsLiteral(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "{}"
	}
	return strings.TrimRight(buf.String(), "\n")
}

func javaTextBlock(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"""`, `\"""`)
	return "\"\"\"\n" + s + "\"\"\""
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func doubleQuoted(s string) string {
	return `"` + doubleQuoteEscaper.Replace(s) + `"`
}

func singleQuoted(s string) string {
	return "'" + singleQuoteEscaper.Replace(s) + "'"
}

func contentType(req request) string {
	for _, h := range req.Headers {
		if strings.EqualFold(h.Name, "Content-Type") {
			return h.Value
		}
	}
	return "application/json"
}

func headerMap(headers []header) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	m := make(map[string]string, len(headers))
	for _, h := range headers {
		m[h.Name] = h.Value
	}
	return m
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
